// Package update реализует HTTP-обработчик частичного изменения тура.
package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
	"github.com/magabrotheeeer/natours/internal/models"
)

// Service изменяет тур.
type Service interface {
	Update(ctx context.Context, id string, patch models.TourPatch) (*models.Tour, error)
}

// Handler обрабатывает изменение тура.
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
// @Summary Изменение тура
// @Tags Tours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ObjectID тура"
// @Param request body models.TourPatch true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tours/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tours.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var patch models.TourPatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		h.errs.Write(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	t, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	log.Info("tour updated", slog.String("tour_id", id))
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{"tour": t}))
}
