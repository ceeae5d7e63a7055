package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/lib/queryfeatures"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/storage"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByIDUnscoped(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, q queryfeatures.Query) ([]*models.User, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) Deactivate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func strPtr(s string) *string { return &s }

const userID = "5c8a1d5b0190b214360dc057"

func TestService_UpdateMe(t *testing.T) {
	tests := []struct {
		name       string
		in         UpdateMeInput
		setupMocks func(r *MockRepository)
		wantCode   string
	}{
		{
			name: "name and email",
			in:   UpdateMeInput{Name: strPtr(" Jonas "), Email: strPtr("NEW@natours.dev")},
			setupMocks: func(r *MockRepository) {
				r.On("Update", mock.Anything, userID, mock.MatchedBy(func(p models.UserPatch) bool {
					return *p.Name == "Jonas" && *p.Email == "new@natours.dev" && p.Role == nil && p.Photo == nil
				})).Return(&models.User{Name: "Jonas", Email: "new@natours.dev"}, nil).Once()
			},
		},
		{
			name:       "password fields are refused",
			in:         UpdateMeInput{Name: strPtr("Jonas"), Password: "pass1234", PasswordConfirm: "pass1234"},
			setupMocks: func(_ *MockRepository) {},
			wantCode:   apperr.CodeValidation,
		},
		{
			name:       "invalid email",
			in:         UpdateMeInput{Email: strPtr("nope")},
			setupMocks: func(_ *MockRepository) {},
			wantCode:   apperr.CodeValidation,
		},
		{
			name:       "whitespace-only name",
			in:         UpdateMeInput{Name: strPtr("   ")},
			setupMocks: func(_ *MockRepository) {},
			wantCode:   apperr.CodeValidation,
		},
		{
			name:       "nothing to update",
			in:         UpdateMeInput{},
			setupMocks: func(_ *MockRepository) {},
			wantCode:   apperr.CodeValidation,
		},
		{
			name: "user gone",
			in:   UpdateMeInput{Name: strPtr("Jonas")},
			setupMocks: func(r *MockRepository) {
				r.On("Update", mock.Anything, userID, mock.Anything).Return(nil, storage.ErrNotFound).Once()
			},
			wantCode: apperr.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)
			svc := NewService(repo, newNoopLogger())

			u, err := svc.UpdateMe(context.Background(), userID, tt.in)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperr.Inspect(err).Code)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Jonas", u.Name)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_DeleteMe(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Deactivate", mock.Anything, userID).Return(nil).Once()
	repo.On("Deactivate", mock.Anything, "other").Return(errors.New("connection reset")).Once()
	svc := NewService(repo, newNoopLogger())

	require.NoError(t, svc.DeleteMe(context.Background(), userID))

	err := svc.DeleteMe(context.Background(), "other")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInternal, apperr.Inspect(err).Code)
	repo.AssertExpectations(t)
}

func TestService_List(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything, mock.MatchedBy(func(q queryfeatures.Query) bool {
		return assert.ObjectsAreEqual(bson.M{"role": "guide"}, q.Filter) &&
			q.Limit == 2 && q.Skip == 2 &&
			q.Projection["password"] == 0
	})).Return([]*models.User{{Name: "Leo"}}, nil).Once()
	svc := NewService(repo, newNoopLogger())

	params, _ := url.ParseQuery("role=guide&page=2&limit=2")
	list, err := svc.List(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	repo.AssertExpectations(t)
}

func TestService_List_HiddenFieldRejected(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, newNoopLogger())

	for _, raw := range []string{"password[gt]=a", "sort=passwordResetToken", "active=false"} {
		params, _ := url.ParseQuery(raw)
		_, err := svc.List(context.Background(), params)
		assert.Equal(t, apperr.CodeValidation, apperr.Inspect(err).Code, raw)
	}
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestService_Get(t *testing.T) {
	repo := new(MockRepository)
	inactive := &models.User{Name: "Gone", Active: false}
	repo.On("FindByIDUnscoped", mock.Anything, userID).Return(inactive, nil).Once()
	repo.On("FindByIDUnscoped", mock.Anything, "5c8a1d5b0190b214360dc000").Return(nil, storage.ErrNotFound).Once()
	svc := NewService(repo, newNoopLogger())

	u, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Same(t, inactive, u, "admin lookup sees deactivated users")

	_, err = svc.Get(context.Background(), "5c8a1d5b0190b214360dc000")
	d := apperr.Inspect(err)
	assert.Equal(t, apperr.CodeNotFound, d.Code)
	assert.Equal(t, "No user found with that ID", d.Message)
}

func TestService_Update(t *testing.T) {
	tests := []struct {
		name       string
		in         AdminUpdateInput
		setupMocks func(r *MockRepository)
		wantCode   string
	}{
		{
			name: "role change",
			in:   AdminUpdateInput{Role: strPtr("lead-guide")},
			setupMocks: func(r *MockRepository) {
				r.On("Update", mock.Anything, userID, mock.MatchedBy(func(p models.UserPatch) bool {
					return p.Role != nil && *p.Role == models.RoleLeadGuide
				})).Return(&models.User{Role: models.RoleLeadGuide}, nil).Once()
			},
		},
		{
			name:       "unknown role",
			in:         AdminUpdateInput{Role: strPtr("root")},
			setupMocks: func(_ *MockRepository) {},
			wantCode:   apperr.CodeValidation,
		},
		{
			name:       "whitespace-only name",
			in:         AdminUpdateInput{Name: strPtr(" \t ")},
			setupMocks: func(_ *MockRepository) {},
			wantCode:   apperr.CodeValidation,
		},
		{
			name:       "empty patch",
			in:         AdminUpdateInput{},
			setupMocks: func(_ *MockRepository) {},
			wantCode:   apperr.CodeValidation,
		},
		{
			name: "not found",
			in:   AdminUpdateInput{Photo: strPtr("user-1.jpg")},
			setupMocks: func(r *MockRepository) {
				r.On("Update", mock.Anything, userID, mock.Anything).Return(nil, storage.ErrNotFound).Once()
			},
			wantCode: apperr.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)
			svc := NewService(repo, newNoopLogger())

			_, err := svc.Update(context.Background(), userID, tt.in)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, apperr.Inspect(err).Code)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Delete(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Delete", mock.Anything, userID).Return(storage.ErrNotFound).Once()
	svc := NewService(repo, newNoopLogger())

	err := svc.Delete(context.Background(), userID)
	assert.Equal(t, apperr.CodeNotFound, apperr.Inspect(err).Code)
	repo.AssertExpectations(t)
}
