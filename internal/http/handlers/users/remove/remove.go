// Package remove реализует HTTP-обработчик удаления пользователя.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/natours/internal/http/response"
)

// Service удаляет пользователя.
type Service interface {
	Delete(ctx context.Context, id string) error
}

// Handler обрабатывает удаление пользователя.
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
// @Summary Удаление пользователя
// @Tags Users
// @Security BearerAuth
// @Param id path string true "ObjectID пользователя"
// @Success 204
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.remove"

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	h.log.Info("user deleted",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", id),
	)
	response.NoContent(w, r)
}
