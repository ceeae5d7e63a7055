package response

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
)

const genericMessage = "Something went wrong"

// ErrorDetails отладочная часть ответа в режиме разработки.
type ErrorDetails struct {
	Code    string         `json:"code"`
	Status  int            `json:"statusCode"`
	Context map[string]any `json:"context,omitempty"`
}

// Errors переводит ошибки в JSON-конверты.
//
// В production операционные ошибки отдаются с исходным сообщением, а программные
// заменяются на "Something went wrong". В режиме разработки в ответ добавляются
// код, контекст и стек.
type Errors struct {
	log         *slog.Logger
	development bool
}

// NewErrors создаёт Errors.
func NewErrors(log *slog.Logger, development bool) *Errors {
	return &Errors{log: log, development: development}
}

// Write записывает ошибку err в ответ.
func (e *Errors) Write(w http.ResponseWriter, r *http.Request, err error) {
	const op = "http.response.Errors.Write"

	log := e.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	d := apperr.Inspect(err)
	resp := Response{
		Status:  StatusFor(d.Status),
		Message: d.Message,
	}

	if d.Operational {
		log.Info("request failed", slog.String("code", d.Code), slog.Int("status", d.Status), sl.Err(err))
	} else {
		log.Error("unexpected error", sl.Err(err), slog.String("stack", fmt.Sprintf("%+v", err)))
		if !e.development {
			resp.Message = genericMessage
		}
	}

	if e.development {
		resp.Error = ErrorDetails{Code: d.Code, Status: d.Status, Context: d.Context}
		resp.Stack = fmt.Sprintf("%+v", err)
	}

	JSON(w, r, d.Status, resp)
}
