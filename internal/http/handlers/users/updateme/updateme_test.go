package updateme

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/http/middlewarectx"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/services/users"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) UpdateMe(ctx context.Context, userID string, in users.UpdateMeInput) (*models.User, error) {
	args := m.Called(ctx, userID, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUpdateMeHandler(t *testing.T) {
	current := &models.User{ID: primitive.NewObjectID(), Name: "Jonas", Email: "jonas@natours.dev", Role: models.RoleUser}
	name := "Jonas S."

	tests := []struct {
		name        string
		body        string
		setupMock   func(*MockService)
		wantStatus  int
		wantMessage string
	}{
		{
			name: "новое имя",
			body: `{"name":"Jonas S."}`,
			setupMock: func(m *MockService) {
				updated := *current
				updated.Name = name
				m.On("UpdateMe", mock.Anything, current.ID.Hex(), users.UpdateMeInput{Name: &name}).
					Return(&updated, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "поля пароля",
			body: `{"password":"newpass123","passwordConfirm":"newpass123"}`,
			setupMock: func(m *MockService) {
				m.On("UpdateMe", mock.Anything, current.ID.Hex(), users.UpdateMeInput{Password: "newpass123", PasswordConfirm: "newpass123"}).
					Return(nil, apperr.Validation("Do not send password related fields to this route")).Once()
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Do not send password related fields to this route",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			h := New(newNoopLogger(), svc, response.NewErrors(newNoopLogger(), false))

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/updateMe", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithUser(req.Context(), current))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var resp response.Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMessage, resp.Message)
			svc.AssertExpectations(t)
		})
	}
}
