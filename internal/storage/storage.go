// Package storage содержит общие для хранилищ ошибки.
package storage

import "errors"

// ErrNotFound документ не найден с учётом фильтров по умолчанию.
var ErrNotFound = errors.New("not found")
