// Package cookie выставляет cookie с токеном сессии.
package cookie

import (
	"net/http"
	"time"
)

// Name имя cookie с токеном.
const Name = "jwt"

// Issuer выставляет httpOnly cookie с токеном. В production cookie помечается Secure.
type Issuer struct {
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewIssuer создаёт Issuer с временем жизни ttl.
func NewIssuer(ttl time.Duration, secure bool) *Issuer {
	return &Issuer{ttl: ttl, secure: secure, now: time.Now}
}

// Set добавляет cookie с токеном в ответ.
func (i *Issuer) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    token,
		Path:     "/",
		Expires:  i.now().Add(i.ttl),
		MaxAge:   int(i.ttl.Seconds()),
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
