package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/magabrotheeeer/natours/internal/lib/jwt"
)

// Details классифицированная ошибка, готовая к отображению.
type Details struct {
	Code        string
	Message     string
	Status      int
	Operational bool
	Context     map[string]any
}

// Inspect переводит ошибку в Details. Распознаваемые ошибки драйвера, валидатора,
// декодера и JWT становятся операционными; остальное считается INTERNAL.
func Inspect(err error) Details {
	if err == nil {
		return Details{Code: CodeInternal, Status: http.StatusInternalServerError, Message: "Something went wrong"}
	}

	if d, ok := fromOops(err); ok {
		return d
	}

	switch {
	case mongo.IsDuplicateKeyError(err):
		return operational(CodeConflict, duplicateMessage(err))
	case errors.Is(err, jwt.ErrTokenExpired):
		return operational(CodeTokenExpired, "Token is expired, login again")
	case errors.Is(err, jwt.ErrTokenInvalid):
		return operational(CodeInvalidToken, "Token is not valid, Login again")
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return operational(CodeValidation, ValidationMessage(validationErrs))
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return operational(CodePayloadTooLarge, fmt.Sprintf("Request body exceeds %d bytes", maxBytesErr.Limit))
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return operational(CodeValidation, "Request body is not valid JSON")
	case errors.As(err, &typeErr):
		return operational(CodeValidation, fmt.Sprintf("Invalid value for field %s", typeErr.Field))
	case errors.Is(err, io.EOF):
		return operational(CodeValidation, "Request body is empty")
	}

	return Details{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
	}
}

// CodeOf возвращает код операционной ошибки или пустую строку.
func CodeOf(err error) string {
	if d, ok := fromOops(err); ok {
		return d.Code
	}
	return ""
}

// Is сообщает, несёт ли err указанный код.
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

func fromOops(err error) (Details, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return Details{}, false
	}
	code := fmt.Sprint(oopsErr.Code())
	if _, known := statuses[code]; !known {
		return Details{}, false
	}

	ctx := oopsErr.Context()
	message, _ := ctx[messageKey].(string)
	if message == "" {
		message = oopsErr.Error()
	}
	return Details{
		Code:        code,
		Message:     message,
		Status:      Status(code),
		Operational: code != CodeInternal,
		Context:     ctx,
	}, true
}

func operational(code, message string) Details {
	return Details{
		Code:        code,
		Message:     message,
		Status:      Status(code),
		Operational: true,
	}
}

var dupKeyRe = regexp.MustCompile(`dup key: \{ ?([^:]+): "?([^"}]*)"? ?\}`)

func duplicateMessage(err error) string {
	m := dupKeyRe.FindStringSubmatch(err.Error())
	if len(m) != 3 {
		return "Duplicate field value. Please use another value"
	}
	return fmt.Sprintf("Duplicate field value %q for %s. Please use another value", strings.TrimSpace(m[2]), strings.TrimSpace(m[1]))
}

// ValidationMessage собирает читаемый текст из ошибок валидатора.
func ValidationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		field := err.Field()
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, "Please provide a valid email")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s characters", field, err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must have at most %s characters", field, err.Param()))
		case "eqfield":
			msgs = append(msgs, fmt.Sprintf("%s does not match %s", field, lowerFirst(err.Param())))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", ")))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be less than or equal to %s", field, err.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, err.Param()))
		case "ltfield":
			msgs = append(msgs, fmt.Sprintf("%s must be below %s", field, lowerFirst(err.Param())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is not valid", field))
		}
	}
	return "Invalid input data. " + strings.Join(msgs, ". ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
