// Package updatepassword реализует HTTP-обработчик смены пароля текущим пользователем.
package updatepassword

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/http/cookie"
	"github.com/magabrotheeeer/natours/internal/http/middlewarectx"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
)

// Request текущий и новый пароль.
type Request struct {
	PasswordCurrent string `json:"passwordCurrent" example:"pass1234"`
	Password        string `json:"password" example:"newpass123"`
	PasswordConfirm string `json:"passwordConfirm" example:"newpass123"`
}

// Handler обрабатывает смену пароля.
type Handler struct {
	log     *slog.Logger
	service Service
	cookies *cookie.Issuer
	errs    *response.Errors
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, cookies *cookie.Issuer, errs *response.Errors) *Handler {
	return &Handler{
		log:     log,
		service: service,
		cookies: cookies,
		errs:    errs,
	}
}

// ServeHTTP godoc
// @Summary Смена пароля
// @Description Проверяет текущий пароль, задаёт новый и выдаёт новый токен сессии.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Текущий и новый пароль"
// @Success 200 {object} response.Response "Пароль изменён"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 401 {object} response.Response "Неверный текущий пароль"
// @Router /users/updateMyPassword [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.updatepassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	u, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		h.errs.Write(w, r, apperr.Unauthenticated("You are not logged in. Log in to get access"))
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		h.errs.Write(w, r, err)
		return
	}

	sess, err := h.service.UpdatePassword(r.Context(), u.ID.Hex(), req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	log.Info("password updated", slog.String("user_id", u.ID.Hex()))
	h.cookies.Set(w, sess.Token)
	response.JSON(w, r, http.StatusOK, response.WithToken(sess.Token, map[string]any{"user": sess.User}))
}
