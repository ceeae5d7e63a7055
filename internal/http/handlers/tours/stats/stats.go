// Package stats реализует HTTP-обработчик статистики туров по сложности.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
)

// Service считает статистику туров.
type Service interface {
	Stats(ctx context.Context) ([]models.TourStats, error)
}

// Handler отдаёт статистику.
type Handler struct {
	log     *slog.Logger
	service Service
	errs    *response.Errors
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, errs *response.Errors) *Handler {
	return &Handler{log: log, service: service, errs: errs}
}

// ServeHTTP godoc
// @Summary Статистика туров
// @Description Туры с рейтингом от 4.5, сгруппированные по сложности.
// @Tags Tours
// @Produce json
// @Success 200 {object} response.Response
// @Router /tours/tour-stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Stats(r.Context())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{"stats": res}))
}
