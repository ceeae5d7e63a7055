package signup

import (
	"context"

	"github.com/magabrotheeeer/natours/internal/services/auth"
)

// Service описывает бизнес-логику регистрации.
type Service interface {
	Signup(ctx context.Context, in auth.SignupInput) (*auth.Session, error)
}
