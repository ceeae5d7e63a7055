// Package login реализует HTTP-обработчик входа по email и паролю.
package login

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/natours/internal/http/cookie"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
)

// Request учетные данные.
type Request struct {
	Email    string `json:"email" example:"jonas@natours.dev"`
	Password string `json:"password" example:"pass1234"`
}

// Handler обрабатывает вход.
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
// @Summary Вход пользователя
// @Description Проверяет email и пароль и выдаёт токен сессии.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.Response "Не указан email или пароль"
// @Failure 401 {object} response.Response "Неверные учетные данные"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /users/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	log.Info("login success", slog.String("user_id", sess.User.ID.Hex()))
	h.cookies.Set(w, sess.Token)
	response.JSON(w, r, http.StatusOK, response.WithToken(sess.Token, map[string]any{"user": sess.User}))
}
