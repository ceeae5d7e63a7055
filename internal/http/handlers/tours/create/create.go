// Package create реализует HTTP-обработчик создания тура.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
	"github.com/magabrotheeeer/natours/internal/models"
)

// Service создаёт тур.
type Service interface {
	Create(ctx context.Context, t *models.Tour) (*models.Tour, error)
}

// Handler обрабатывает создание тура.
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
// @Summary Создание тура
// @Tags Tours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Tour true "Тур"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /tours [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tours.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var t models.Tour
	if err := render.DecodeJSON(r.Body, &t); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		h.errs.Write(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), &t)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	log.Info("tour created", slog.String("tour_id", created.ID.Hex()))
	response.JSON(w, r, http.StatusCreated, response.OK(map[string]any{"tour": created}))
}
