// Package signup реализует HTTP-обработчик регистрации пользователя.
//
// При успехе возвращает 201, токен сессии в теле и в cookie jwt.
package signup

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/natours/internal/http/cookie"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
	"github.com/magabrotheeeer/natours/internal/services/auth"
)

// Request данные регистрации.
type Request struct {
	Name            string `json:"name" example:"Jonas Schmedtmann"`
	Email           string `json:"email" example:"jonas@natours.dev"`
	Password        string `json:"password" example:"pass1234"`
	PasswordConfirm string `json:"passwordConfirm" example:"pass1234"`
}

// Handler обрабатывает регистрацию.
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
// @Summary Регистрация пользователя
// @Description Создаёт пользователя с ролью user и выдаёт токен сессии.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Данные регистрации"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 409 {object} response.Response "Email уже занят"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /users/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"

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

	sess, err := h.service.Signup(r.Context(), auth.SignupInput(req))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	log.Info("user signed up", slog.String("user_id", sess.User.ID.Hex()))
	h.cookies.Set(w, sess.Token)
	response.JSON(w, r, http.StatusCreated, response.WithToken(sess.Token, map[string]any{"user": sess.User}))
}
