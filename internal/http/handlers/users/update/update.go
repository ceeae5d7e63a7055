// Package update реализует HTTP-обработчик изменения пользователя администратором.
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
	"github.com/magabrotheeeer/natours/internal/services/users"
)

// Service описывает изменение пользователя.
type Service interface {
	Update(ctx context.Context, id string, in users.AdminUpdateInput) (*models.User, error)
}

// Handler обрабатывает изменение пользователя.
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
// @Summary Изменение пользователя
// @Description Меняет имя, email, фото и роль. Пароль этим маршрутом не меняется.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ObjectID пользователя"
// @Param request body users.AdminUpdateInput true "Новые значения"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var in users.AdminUpdateInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		h.errs.Write(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	u, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	log.Info("user updated", slog.String("user_id", id))
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{"user": u}))
}
