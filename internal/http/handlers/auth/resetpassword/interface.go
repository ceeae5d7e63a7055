package resetpassword

import (
	"context"

	"github.com/magabrotheeeer/natours/internal/services/auth"
)

// Service описывает обмен токена сброса на новый пароль.
type Service interface {
	ResetPassword(ctx context.Context, token, password, confirm string) (*auth.Session, error)
}
