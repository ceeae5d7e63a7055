// Package validate настраивает общий валидатор входных данных.
package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

// New возвращает валидатор, который называет поля по их json-тегам,
// чтобы сообщения об ошибках совпадали с телом запроса.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
