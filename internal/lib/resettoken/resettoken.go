// Package resettoken генерирует одноразовые токены сброса пароля.
//
// Пользователь получает токен в письме, в базе хранится только его sha256.
package resettoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// Bytes длина токена до hex-кодирования.
	Bytes = 32
	// TTL время жизни токена сброса.
	TTL = 10 * time.Minute
)

// Generate возвращает токен для письма и его хеш для хранения.
func Generate() (token, hash string, err error) {
	const op = "resettoken.Generate"
	buf := make([]byte, Bytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	token = hex.EncodeToString(buf)
	return token, Hash(token), nil
}

// Hash вычисляет sha256 токена в hex.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
