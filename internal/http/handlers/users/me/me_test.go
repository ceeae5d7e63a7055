package me

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/natours/internal/http/middlewarectx"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func TestMeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	u := &models.User{ID: primitive.NewObjectID(), Name: "Jonas", Email: "jonas@natours.dev"}

	t.Run("профиль из хранилища", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Get", mock.Anything, u.ID.Hex()).Return(u, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req = req.WithContext(middlewarectx.WithUser(req.Context(), u))
		rr := httptest.NewRecorder()
		New(logger, svc, response.NewErrors(logger, false)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"email":"jonas@natours.dev"`)
		svc.AssertExpectations(t)
	})

	t.Run("без Protect", func(t *testing.T) {
		svc := new(MockService)
		rr := httptest.NewRecorder()
		New(logger, svc, response.NewErrors(logger, false)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}
