// Package apperr описывает таксономию ошибок API.
//
// Операционные ошибки (ожидаемые, с сообщением для клиента) создаются через
// samber/oops с кодом из этого пакета и публичным сообщением в контексте.
// Всё остальное считается программной ошибкой и отдаётся клиенту как INTERNAL.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/samber/oops"
)

// Коды операционных ошибок.
const (
	CodeValidation            = "VALIDATION"
	CodeUnauthenticated       = "UNAUTHENTICATED"
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeTokenExpired          = "TOKEN_EXPIRED"
	CodePrincipalGone         = "PRINCIPAL_GONE"
	CodeStaleCredential       = "STALE_CREDENTIAL"
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeMethodNotAllowed      = "METHOD_NOT_ALLOWED"
	CodeConflict              = "CONFLICT"
	CodePayloadTooLarge       = "PAYLOAD_TOO_LARGE"
	CodeRateLimited           = "RATE_LIMITED"
	CodeInvalidOrExpiredToken = "INVALID_OR_EXPIRED_TOKEN"
	CodeEmailDeliveryFailed   = "EMAIL_DELIVERY_FAILED"
	CodeNotImplemented        = "NOT_IMPLEMENTED"
	CodeInternal              = "INTERNAL"
)

const (
	domain     = "natours"
	messageKey = "message"
)

var statuses = map[string]int{
	CodeValidation:            http.StatusBadRequest,
	CodeUnauthenticated:       http.StatusUnauthorized,
	CodeInvalidToken:          http.StatusUnauthorized,
	CodeTokenExpired:          http.StatusUnauthorized,
	CodePrincipalGone:         http.StatusUnauthorized,
	CodeStaleCredential:       http.StatusUnauthorized,
	CodeForbidden:             http.StatusForbidden,
	CodeNotFound:              http.StatusNotFound,
	CodeMethodNotAllowed:      http.StatusMethodNotAllowed,
	CodeConflict:              http.StatusConflict,
	CodePayloadTooLarge:       http.StatusRequestEntityTooLarge,
	CodeRateLimited:           http.StatusTooManyRequests,
	CodeInvalidOrExpiredToken: http.StatusBadRequest,
	CodeEmailDeliveryFailed:   http.StatusInternalServerError,
	CodeNotImplemented:        http.StatusInternalServerError,
	CodeInternal:              http.StatusInternalServerError,
}

// Status возвращает HTTP статус для кода. Неизвестные коды дают 500.
func Status(code string) int {
	if status, ok := statuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New создаёт операционную ошибку с кодом и сообщением для клиента.
func New(code, message string) error {
	return oops.In(domain).Code(code).With(messageKey, message).Errorf("%s", message)
}

// Newf как New, но с форматированием сообщения.
func Newf(code, format string, args ...any) error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap оборачивает err операционной ошибкой. Сообщение клиенту берётся из message,
// исходная ошибка остаётся в цепочке для логов.
func Wrap(err error, code, message string) error {
	return oops.In(domain).Code(code).With(messageKey, message).Wrapf(err, "%s", message)
}

// Validation ошибка некорректных входных данных.
func Validation(message string) error { return New(CodeValidation, message) }

// NotFound ошибка отсутствующего ресурса.
func NotFound(message string) error { return New(CodeNotFound, message) }

// Unauthenticated ошибка отсутствующей или неверной аутентификации.
func Unauthenticated(message string) error { return New(CodeUnauthenticated, message) }

// Forbidden ошибка недостаточных прав.
func Forbidden(message string) error { return New(CodeForbidden, message) }

// Conflict ошибка нарушения уникальности.
func Conflict(message string) error { return New(CodeConflict, message) }

// Cast ошибка приведения значения к типу поля.
func Cast(path, value string) error {
	return oops.In(domain).
		Code(CodeValidation).
		With(messageKey, fmt.Sprintf("%s is not a valid data for %s", value, path)).
		With("path", path).
		Errorf("cast %q for %s", value, path)
}

// Internal программная ошибка. Сообщение не показывается клиенту в production.
func Internal(err error) error {
	return oops.In(domain).Code(CodeInternal).Wrap(err)
}
