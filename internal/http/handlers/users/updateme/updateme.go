// Package updateme реализует HTTP-обработчик изменения имени и email текущего пользователя.
//
// Пароль здесь не меняется: для этого есть /users/updateMyPassword.
package updateme

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/http/middlewarectx"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
	"github.com/magabrotheeeer/natours/internal/services/users"
)

// Handler обрабатывает изменение профиля.
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
// @Summary Изменение профиля
// @Description Меняет имя и email. Поля пароля отклоняются.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body users.UpdateMeInput true "Новые значения"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/updateMe [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.updateme"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	current, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		h.errs.Write(w, r, apperr.Unauthenticated("You are not logged in. Log in to get access"))
		return
	}

	var in users.UpdateMeInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		h.errs.Write(w, r, err)
		return
	}

	u, err := h.service.UpdateMe(r.Context(), current.ID.Hex(), in)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	log.Info("profile updated", slog.String("user_id", current.ID.Hex()))
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{"user": u}))
}
