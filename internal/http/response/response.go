// Package response содержит конверты JSON-ответов API и запись ошибок.
package response

import (
	"net/http"

	"github.com/go-chi/render"
)

// Статусы конверта.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Response общий конверт ответа.
type Response struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// OK успешный ответ с данными.
func OK(data any) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// List успешный ответ со списком и количеством элементов.
func List(n int, data any) Response {
	return Response{Status: StatusSuccess, Results: &n, Data: data}
}

// WithToken успешный ответ с выданным токеном.
func WithToken(token string, data any) Response {
	return Response{Status: StatusSuccess, Token: token, Data: data}
}

// Message успешный ответ только с сообщением.
func Message(msg string) Response {
	return Response{Status: StatusSuccess, Message: msg}
}

// StatusFor возвращает "fail" для 4xx и "error" для остальных кодов.
func StatusFor(code int) string {
	if code >= 400 && code < 500 {
		return StatusFail
	}
	return StatusError
}

// JSON записывает конверт с HTTP статусом.
func JSON(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// NoContent отвечает 204 без тела.
func NoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}
