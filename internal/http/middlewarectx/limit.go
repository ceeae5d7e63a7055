package middlewarectx

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
	"github.com/magabrotheeeer/natours/internal/metrics"
)

const msgTooManyRequests = "Too many requests from this IP, please try again in an hour"

// RateLimit ограничивает число запросов с одного IP.
//
// Ставит заголовки X-RateLimit-Limit и X-RateLimit-Remaining, а при отказе
// Retry-After и ответ 429. Если лимитер недоступен, запрос пропускается.
func RateLimit(limiter Limiter, errs ErrorWriter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RateLimit"

			res, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Warn("rate limiter unavailable, request allowed",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				metrics.RateLimited.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				errs.Write(w, r, apperr.New(apperr.CodeRateLimited, msgTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP адрес сокета клиента без порта. X-Forwarded-For и X-Real-IP не учитываются:
// их присылает сам клиент.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
