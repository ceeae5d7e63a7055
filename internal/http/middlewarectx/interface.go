package middlewarectx

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/ratelimit"
)

// Authenticator проверяет токен сессии и возвращает его владельца.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Limiter учитывает запрос клиента.
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Result, error)
}

// ErrorWriter записывает ошибку в ответ.
type ErrorWriter interface {
	Write(w http.ResponseWriter, r *http.Request, err error)
}
