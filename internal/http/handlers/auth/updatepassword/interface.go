package updatepassword

import (
	"context"

	"github.com/magabrotheeeer/natours/internal/services/auth"
)

// Service описывает смену пароля вошедшим пользователем.
type Service interface {
	UpdatePassword(ctx context.Context, userID, current, password, confirm string) (*auth.Session, error)
}
