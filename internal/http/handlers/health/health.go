// Package health отвечает на проверки живости и готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
)

const checkTimeout = 2 * time.Second

// Pinger зависимость, которую можно проверить.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler проверяет зависимости сервиса.
type Handler struct {
	log    *slog.Logger
	checks map[string]Pinger
}

// New создает Handler с проверками checks (имя -> зависимость).
func New(log *slog.Logger, checks map[string]Pinger) *Handler {
	return &Handler{
		log:    log,
		checks: checks,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			h.log.Error("dependency is unavailable",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("dependency", name),
				sl.Err(err),
			)
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	resp := response.OK(map[string]any{"dependencies": deps})
	if status != http.StatusOK {
		resp.Status = response.StatusError
	}
	response.JSON(w, r, status, resp)
}
