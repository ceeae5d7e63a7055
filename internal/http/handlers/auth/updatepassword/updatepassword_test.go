package updatepassword

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/http/cookie"
	"github.com/magabrotheeeer/natours/internal/http/middlewarectx"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/services/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) UpdatePassword(ctx context.Context, userID, current, password, confirm string) (*auth.Session, error) {
	args := m.Called(ctx, userID, current, password, confirm)
	sess, _ := args.Get(0).(*auth.Session)
	return sess, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUpdatePasswordHandler(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Email: "jonas@natours.dev", Role: models.RoleUser}
	body := `{"passwordCurrent":"pass1234","password":"newpass123","passwordConfirm":"newpass123"}`

	tests := []struct {
		name       string
		user       *models.User
		setupMock  func(*MockService)
		wantStatus int
	}{
		{
			name: "пароль изменён",
			user: u,
			setupMock: func(m *MockService) {
				m.On("UpdatePassword", mock.Anything, u.ID.Hex(), "pass1234", "newpass123", "newpass123").
					Return(&auth.Session{Token: "fresh", User: u}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "неверный текущий пароль",
			user: u,
			setupMock: func(m *MockService) {
				m.On("UpdatePassword", mock.Anything, u.ID.Hex(), "pass1234", "newpass123", "newpass123").
					Return(nil, apperr.Unauthenticated("The password is incorrect, operation failed")).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "без пользователя в контексте",
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			h := New(newNoopLogger(), svc, cookie.NewIssuer(time.Hour, false), response.NewErrors(newNoopLogger(), false))

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/updateMyPassword", bytes.NewBufferString(body))
			if tt.user != nil {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}
