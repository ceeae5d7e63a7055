// Package create отвечает на POST /users: пользователи создаются только через /users/signup.
package create

import (
	"net/http"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/http/response"
)

// Handler всегда отвечает 500 с подсказкой про /signup.
type Handler struct {
	errs *response.Errors
}

// New создает новый Handler.
func New(errs *response.Errors) *Handler {
	return &Handler{errs: errs}
}

// ServeHTTP godoc
// @Summary Создание пользователя (не поддерживается)
// @Tags Users
// @Produce json
// @Failure 500 {object} response.Response
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.errs.Write(w, r, apperr.New(apperr.CodeNotImplemented, "This route is not defined. Please use /signup instead"))
}
