package login

import (
	"context"

	"github.com/magabrotheeeer/natours/internal/services/auth"
)

// Service описывает бизнес-логику входа.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}
