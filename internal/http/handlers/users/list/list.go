// Package list реализует HTTP-обработчик списка активных пользователей.
//
// Строка запроса разбирается конструктором запросов: фильтры, sort, fields, page и limit.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
)

// Service возвращает пользователей по параметрам запроса.
type Service interface {
	List(ctx context.Context, params url.Values) ([]*models.User, error)
}

// Handler отдаёт список пользователей.
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
// @Summary Список пользователей
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param sort query string false "Поля сортировки через запятую, - для убывания"
// @Param fields query string false "Поля ответа через запятую"
// @Param page query int false "Номер страницы"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.List(len(res), map[string]any{"users": res}))
}
