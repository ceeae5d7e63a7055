// Package middlewarectx содержит HTTP middleware API: проверку сессии, ролевой
// доступ, ограничение частоты запросов и защиту входных данных.
//
// Protect проверяет Bearer токен в заголовке Authorization и кладёт владельца
// токена в контекст запроса. RestrictTo пропускает только перечисленные роли.
package middlewarectx

import (
	"context"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User ключ текущего пользователя в контексте.
const User Key = "user"

const (
	msgNotLoggedIn = "You are not logged in. Log in to get access"
	msgForbidden   = "You do not have permission to perform this operation"
)

// WithUser возвращает контекст с пользователем u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, User, u)
}

// UserFromContext возвращает пользователя, которого положил Protect.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(User).(*models.User)
	return u, ok && u != nil
}

// Protect возвращает middleware, который требует валидный токен сессии.
//
// Токен берётся только из заголовка "Authorization: Bearer <token>". Ошибки
// проверки (нет токена, токен неверен или истёк, владельца нет, пароль сменён
// после выпуска) отдаются через errs.
func Protect(auth Authenticator, errs ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				errs.Write(w, r, apperr.Unauthenticated(msgNotLoggedIn))
				return
			}

			u, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				errs.Write(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// RestrictTo пропускает запрос, только если роль пользователя входит в roles.
// Работает после Protect; запрос без пользователя получает 403.
func RestrictTo(errs ErrorWriter, roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				errs.Write(w, r, apperr.Forbidden(msgForbidden))
				return
			}
			if _, ok := allowed[u.Role]; !ok {
				errs.Write(w, r, apperr.Forbidden(msgForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
