package signup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/http/cookie"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/services/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Signup(ctx context.Context, in auth.SignupInput) (*auth.Session, error) {
	args := m.Called(ctx, in)
	sess, _ := args.Get(0).(*auth.Session)
	return sess, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSignupHandler(t *testing.T) {
	in := auth.SignupInput{Name: "Jonas", Email: "jonas@natours.dev", Password: "pass1234", PasswordConfirm: "pass1234"}
	body := `{"name":"Jonas","email":"jonas@natours.dev","password":"pass1234","passwordConfirm":"pass1234"}`

	tests := []struct {
		name       string
		setupMock  func(*MockService)
		wantStatus int
		wantCookie bool
	}{
		{
			name: "created",
			setupMock: func(m *MockService) {
				u := &models.User{ID: primitive.NewObjectID(), Name: "Jonas", Email: "jonas@natours.dev", Role: models.RoleUser}
				m.On("Signup", mock.Anything, in).Return(&auth.Session{Token: "tok", User: u}, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantCookie: true,
		},
		{
			name: "duplicate email",
			setupMock: func(m *MockService) {
				m.On("Signup", mock.Anything, in).Return(nil, apperr.Conflict("Duplicate field value \"jonas@natours.dev\" for email. Please use another value")).Once()
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "validation",
			setupMock: func(m *MockService) {
				m.On("Signup", mock.Anything, in).Return(nil, apperr.Validation("Invalid input data. passwordConfirm does not match password")).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			h := New(newNoopLogger(), svc, cookie.NewIssuer(time.Hour, true), response.NewErrors(newNoopLogger(), false))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", bytes.NewBufferString(body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCookie, len(rr.Result().Cookies()) == 1)
			if tt.wantCookie {
				var resp response.Response
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "tok", resp.Token)
				assert.True(t, rr.Result().Cookies()[0].Secure)
			}
			svc.AssertExpectations(t)
		})
	}
}
