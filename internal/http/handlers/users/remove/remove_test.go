package remove

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/http/response"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "удалён", wantStatus: http.StatusNoContent},
		{name: "не найден", err: apperr.NotFound("No user found with that ID"), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Delete", mock.Anything, "5c8a1d5b0190b214360dc057").Return(tt.err).Once()

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/5c8a1d5b0190b214360dc057", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "5c8a1d5b0190b214360dc057")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rr := httptest.NewRecorder()
			New(logger, svc, response.NewErrors(logger, false)).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}
