package deleteme

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

func (m *MockService) DeleteMe(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func TestDeleteMeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	u := &models.User{ID: primitive.NewObjectID()}

	svc := new(MockService)
	svc.On("DeleteMe", mock.Anything, u.ID.Hex()).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/deleteMe", nil)
	req = req.WithContext(middlewarectx.WithUser(req.Context(), u))
	rr := httptest.NewRecorder()
	New(logger, svc, response.NewErrors(logger, false)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	svc.AssertExpectations(t)
}
