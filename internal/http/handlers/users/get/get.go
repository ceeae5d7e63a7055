// Package get реализует HTTP-обработчик получения пользователя по ID.
// Администратор видит и деактивированных пользователей.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
)

// Service загружает пользователя по ID.
type Service interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// Handler отдаёт пользователя.
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
// @Summary Пользователь по ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ObjectID пользователя"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{"user": u}))
}
