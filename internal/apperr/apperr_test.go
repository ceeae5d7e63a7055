package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/magabrotheeeer/natours/internal/lib/jwt"
	"github.com/magabrotheeeer/natours/internal/lib/validate"
)

func TestInspect_OperationalErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "not found",
			err:         NotFound("No tour found with that ID"),
			wantCode:    CodeNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "No tour found with that ID",
		},
		{
			name:        "wrapped with op",
			err:         fmt.Errorf("%s: %w", "services.tours.Get", Forbidden("You do not have permission to perform this action")),
			wantCode:    CodeForbidden,
			wantStatus:  http.StatusForbidden,
			wantMessage: "You do not have permission to perform this action",
		},
		{
			name:        "wrap keeps public message",
			err:         Wrap(errors.New("dial tcp: timeout"), CodeEmailDeliveryFailed, "There was an error sending the email"),
			wantCode:    CodeEmailDeliveryFailed,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "There was an error sending the email",
		},
		{
			name:        "cast error",
			err:         Cast("_id", "wwwww"),
			wantCode:    CodeValidation,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "wwwww is not a valid data for _id",
		},
		{
			name:        "formatted message",
			err:         Newf(CodeNotFound, "Can't find %s on this server", "/api/v1/nope"),
			wantCode:    CodeNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Can't find /api/v1/nope on this server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Inspect(tt.err)
			assert.Equal(t, tt.wantCode, d.Code)
			assert.Equal(t, tt.wantStatus, d.Status)
			assert.Equal(t, tt.wantMessage, d.Message)
			assert.True(t, d.Operational)
		})
	}
}

func TestInspect_TranslatesDriverAndLibraryErrors(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: natours.users index: email_unique dup key: { email: "jonas@natours.dev" }`,
	}}}

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		contains   string
	}{
		{name: "duplicate key", err: dup, wantCode: CodeConflict, wantStatus: http.StatusConflict, contains: "jonas@natours.dev"},
		{name: "expired token", err: fmt.Errorf("parse: %w", jwt.ErrTokenExpired), wantCode: CodeTokenExpired, wantStatus: http.StatusUnauthorized, contains: "expired"},
		{name: "invalid token", err: jwt.ErrTokenInvalid, wantCode: CodeInvalidToken, wantStatus: http.StatusUnauthorized, contains: "not valid"},
		{name: "body too large", err: &http.MaxBytesError{Limit: 10240}, wantCode: CodePayloadTooLarge, wantStatus: http.StatusRequestEntityTooLarge, contains: "10240"},
		{name: "broken json", err: json.Unmarshal([]byte("{"), &struct{}{}), wantCode: CodeValidation, wantStatus: http.StatusBadRequest, contains: "JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Inspect(tt.err)
			assert.Equal(t, tt.wantCode, d.Code)
			assert.Equal(t, tt.wantStatus, d.Status)
			assert.Contains(t, d.Message, tt.contains)
			assert.True(t, d.Operational)
		})
	}
}

func TestInspect_ProgrammingErrors(t *testing.T) {
	for _, err := range []error{
		errors.New("nil pointer somewhere"),
		Internal(errors.New("unexpected state")),
		nil,
	} {
		d := Inspect(err)
		assert.Equal(t, CodeInternal, d.Code)
		assert.Equal(t, http.StatusInternalServerError, d.Status)
		assert.False(t, d.Operational)
	}
}

func TestInspect_ValidationErrors(t *testing.T) {
	type signup struct {
		Name            string `json:"name" validate:"required"`
		Email           string `json:"email" validate:"required,email"`
		Password        string `json:"password" validate:"required,min=8"`
		PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	}

	err := validate.New().Struct(signup{Email: "nope", Password: "short", PasswordConfirm: "other"})
	require.Error(t, err)

	d := Inspect(err)
	assert.Equal(t, CodeValidation, d.Code)
	assert.True(t, strings.HasPrefix(d.Message, "Invalid input data. "))
	assert.Contains(t, d.Message, "name is required")
	assert.Contains(t, d.Message, "Please provide a valid email")
	assert.Contains(t, d.Message, "password must have at least 8 characters")
	assert.Contains(t, d.Message, "passwordConfirm does not match password")

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
}

func TestIsAndCodeOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(CodeStaleCredential, "password changed"))

	assert.True(t, Is(err, CodeStaleCredential))
	assert.False(t, Is(err, CodePrincipalGone))
	assert.False(t, Is(nil, CodeStaleCredential))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestStatus_UnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, Status("SOMETHING_ELSE"))
	assert.Equal(t, http.StatusTooManyRequests, Status(CodeRateLimited))
}
