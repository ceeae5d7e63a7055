// Package forgotpassword реализует HTTP-обработчик запроса ссылки сброса пароля.
package forgotpassword

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
)

// Request адрес, на который отправляется ссылка.
type Request struct {
	Email string `json:"email" example:"jonas@natours.dev"`
}

// Handler обрабатывает запрос сброса пароля.
type Handler struct {
	log     *slog.Logger
	service Service
	baseURL string
	errs    *response.Errors
}

// New создает новый Handler. baseURL публичный адрес API, от которого строится ссылка в письме.
func New(log *slog.Logger, service Service, baseURL string, errs *response.Errors) *Handler {
	return &Handler{log: log, service: service, baseURL: strings.TrimRight(baseURL, "/"), errs: errs}
}

// ServeHTTP godoc
// @Summary Запрос сброса пароля
// @Description Отправляет на email ссылку сброса пароля, действующую 10 минут.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Email пользователя"
// @Success 200 {object} response.Response "Ссылка отправлена"
// @Failure 400 {object} response.Response "Не указан email"
// @Failure 500 {object} response.Response "Письмо не отправлено"
// @Router /users/forgotPassword [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

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

	msg, err := h.service.ForgotPassword(r.Context(), req.Email, h.baseURL)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.Message(msg))
}

