// Package list реализует HTTP-обработчик списка туров и алиас top-five-cheap.
//
// Фильтрация, сортировка, проекция и пагинация задаются строкой запроса:
// ?difficulty=easy&price[lt]=1500&sort=-price,name&fields=name,price&page=2&limit=10
package list

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/services/tours"
)

// Service возвращает туры по параметрам запроса.
type Service interface {
	List(ctx context.Context, params url.Values) ([]*models.Tour, error)
}

// Handler отдаёт список туров.
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
// @Summary Список туров
// @Tags Tours
// @Produce json
// @Security BearerAuth
// @Param sort query string false "Поля сортировки через запятую, - для убывания"
// @Param fields query string false "Поля ответа через запятую"
// @Param page query int false "Номер страницы"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /tours [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.List(len(res), map[string]any{"tours": res}))
}

// TopFiveCheap подставляет параметры алиаса: пять лучших по рейтингу и цене.
//
// @Summary Пять лучших недорогих туров
// @Tags Tours
// @Produce json
// @Success 200 {object} response.Response
// @Router /tours/top-five-cheap [get]
func TopFiveCheap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r2 := r.Clone(r.Context())
		r2.URL.RawQuery = tours.TopFiveCheap(r.URL.Query()).Encode()
		next.ServeHTTP(w, r2)
	})
}
