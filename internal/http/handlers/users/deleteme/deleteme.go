// Package deleteme реализует HTTP-обработчик деактивации собственной учетной записи.
package deleteme

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/http/middlewarectx"
	"github.com/magabrotheeeer/natours/internal/http/response"
)

// Service деактивирует пользователя.
type Service interface {
	DeleteMe(ctx context.Context, userID string) error
}

// Handler обрабатывает деактивацию.
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
// @Summary Деактивация учетной записи
// @Tags Users
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.Response
// @Router /users/deleteMe [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.deleteme"

	current, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		h.errs.Write(w, r, apperr.Unauthenticated("You are not logged in. Log in to get access"))
		return
	}
	if err := h.service.DeleteMe(r.Context(), current.ID.Hex()); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	h.log.Info("user deactivated",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", current.ID.Hex()),
	)
	response.NoContent(w, r)
}
