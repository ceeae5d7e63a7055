// Package remove реализует HTTP-обработчик удаления тура.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/natours/internal/http/response"
)

// Service удаляет тур.
type Service interface {
	Delete(ctx context.Context, id string) error
}

// Handler обрабатывает удаление тура.
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
// @Summary Удаление тура
// @Tags Tours
// @Security BearerAuth
// @Param id path string true "ObjectID тура"
// @Success 204
// @Failure 404 {object} response.Response
// @Router /tours/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tours.remove"

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	h.log.Info("tour deleted",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("tour_id", id),
	)
	response.NoContent(w, r)
}
