// Package resetpassword реализует HTTP-обработчик смены пароля по токену сброса.
package resetpassword

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/natours/internal/http/cookie"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
)

// Request новый пароль.
type Request struct {
	Password        string `json:"password" example:"newpass123"`
	PasswordConfirm string `json:"passwordConfirm" example:"newpass123"`
}

// Handler обрабатывает сброс пароля.
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
// @Summary Сброс пароля
// @Description Меняет пароль по токену из письма и выдаёт новый токен сессии.
// @Tags Auth
// @Accept json
// @Produce json
// @Param token path string true "Токен сброса"
// @Param request body Request true "Новый пароль"
// @Success 200 {object} response.Response "Пароль изменён"
// @Failure 400 {object} response.Response "Токен неверен или истёк"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /users/resetPassword/{token} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		h.errs.Write(w, r, err)
		return
	}

	sess, err := h.service.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password, req.PasswordConfirm)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	log.Info("password reset", slog.String("user_id", sess.User.ID.Hex()))
	h.cookies.Set(w, sess.Token)
	response.JSON(w, r, http.StatusOK, response.WithToken(sess.Token, map[string]any{"user": sess.User}))
}
