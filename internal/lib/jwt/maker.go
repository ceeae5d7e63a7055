// Package jwt выпускает и проверяет сессионные JWT токены пользователей.
//
// Токен подписывается HS256 и несёт идентификатор пользователя, время выпуска
// и срок действия. Просроченный токен отличается от недействительного, чтобы
// клиент получал разные сообщения.
package jwt

import (
	"errors"
	"time"
)

var (
	// ErrTokenExpired срок действия токена истёк.
	ErrTokenExpired = errors.New("token is expired")
	// ErrTokenInvalid токен повреждён, подписан другим ключом или не содержит id.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Maker выпускает и разбирает токены с общим секретом и временем жизни.
type Maker struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option настраивает Maker.
type Option func(*Maker)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *Maker) {
		m.now = now
	}
}

// NewMaker создаёт Maker на основе секретного ключа и TTL.
func NewMaker(secret string, ttl time.Duration, opts ...Option) *Maker {
	m := &Maker{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL возвращает время жизни выпускаемых токенов.
func (m *Maker) TTL() time.Duration {
	return m.ttl
}
