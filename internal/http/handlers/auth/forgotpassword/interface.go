package forgotpassword

import "context"

// Service описывает запрос сброса пароля.
type Service interface {
	ForgotPassword(ctx context.Context, email, baseURL string) (string, error)
}
