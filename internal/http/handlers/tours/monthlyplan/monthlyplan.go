// Package monthlyplan реализует HTTP-обработчик плана стартов туров по месяцам года.
package monthlyplan

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
)

// Service считает план на год.
type Service interface {
	MonthlyPlan(ctx context.Context, year string) ([]models.MonthlyPlan, error)
}

// Handler отдаёт план.
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
// @Summary План туров на год
// @Tags Tours
// @Produce json
// @Security BearerAuth
// @Param year path int true "Год"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /tours/monthly-plan/{year} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.MonthlyPlan(r.Context(), chi.URLParam(r, "year"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.List(len(plan), map[string]any{"plan": plan}))
}
