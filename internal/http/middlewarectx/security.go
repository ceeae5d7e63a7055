package middlewarectx

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/natours/internal/apperr"
)

var securityHeaders = map[string]string{
	"X-Content-Type-Options":            "nosniff",
	"X-Frame-Options":                   "SAMEORIGIN",
	"X-DNS-Prefetch-Control":            "off",
	"X-Download-Options":                "noopen",
	"X-Permitted-Cross-Domain-Policies": "none",
	"Referrer-Policy":                   "no-referrer",
	"Strict-Transport-Security":         "max-age=15552000; includeSubDomains",
	"Cross-Origin-Opener-Policy":        "same-origin",
	"Cross-Origin-Resource-Policy":      "same-origin",
}

// SecurityHeaders выставляет защитные заголовки ответа.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range securityHeaders {
			h.Set(k, v)
		}
		h.Del("X-Powered-By")
		next.ServeHTTP(w, r)
	})
}

// BodyLimit ограничивает тело запроса limit байтами.
// Заведомо большие тела отклоняются сразу по Content-Length.
func BodyLimit(limit int64, errs ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				errs.Write(w, r, &http.MaxBytesError{Limit: limit})
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Recoverer перехватывает панику обработчика и отвечает 500 в общем конверте.
func Recoverer(errs ErrorWriter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				log.Error("panic recovered",
					slog.String("op", "middlewarectx.Recoverer"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)
				errs.Write(w, r, apperr.Internal(fmt.Errorf("panic: %v", rvr)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// NotFound отвечает 404 на неизвестный маршрут.
func NotFound(errs ErrorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		errs.Write(w, r, apperr.NotFound(fmt.Sprintf("Can't find %s on this server", r.URL.RequestURI())))
	}
}

// MethodNotAllowed отвечает 405, если маршрут есть, но метод не поддерживается.
func MethodNotAllowed(errs ErrorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		errs.Write(w, r, apperr.Newf(apperr.CodeMethodNotAllowed, "Method %s is not allowed on %s", r.Method, r.URL.Path))
	}
}
