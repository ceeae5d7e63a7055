// Package metrics объявляет метрики Prometheus и HTTP middleware для их сбора.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const unmatchedRoute = "unmatched"

// Результаты отправки письма.
const (
	EmailSent   = "sent"
	EmailFailed = "failed"
)

// HTTPRequests число обработанных запросов.
var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "natours_http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"method", "route", "status"},
)

// HTTPDuration длительность обработки запросов.
var HTTPDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "natours_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// RateLimited число запросов, отклонённых лимитером.
var RateLimited = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "natours_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	},
)

// Emails число попыток отправить письмо.
var Emails = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "natours_emails_total",
		Help: "Total number of outgoing emails by result",
	},
	[]string{"result"},
)

var registerOnce sync.Once

// Register регистрирует метрики в reg. Повторные вызовы ничего не делают.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(HTTPRequests, HTTPDuration, RateLimited, Emails)
	})
}

// RecordEmail учитывает результат отправки письма.
func RecordEmail(err error) {
	if err != nil {
		Emails.WithLabelValues(EmailFailed).Inc()
		return
	}
	Emails.WithLabelValues(EmailSent).Inc()
}

// Middleware считает запросы по шаблону маршрута chi, а не по сырому пути,
// чтобы id в URL не раздували число серий.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
