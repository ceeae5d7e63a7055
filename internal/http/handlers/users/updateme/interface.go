package updateme

import (
	"context"

	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/services/users"
)

// Service описывает изменение собственного профиля.
type Service interface {
	UpdateMe(ctx context.Context, userID string, in users.UpdateMeInput) (*models.User, error)
}
