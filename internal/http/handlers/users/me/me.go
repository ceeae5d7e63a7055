// Package me реализует HTTP-обработчик профиля текущего пользователя.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/http/middlewarectx"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
)

// Service загружает пользователя по ID.
type Service interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// Handler отдаёт профиль текущего пользователя.
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
// @Summary Текущий пользователь
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	current, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		h.errs.Write(w, r, apperr.Unauthenticated("You are not logged in. Log in to get access"))
		return
	}

	u, err := h.service.Get(r.Context(), current.ID.Hex())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{"user": u}))
}
