// Package models содержит доменные модели Natours: пользователей, туры и
// результаты агрегаций. Структуры размечены тегами bson для MongoDB и json для API.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User учётная запись пользователя.
//
// Пароль хранится только в виде bcrypt-хеша и никогда не сериализуется в JSON.
// Новый пароль задаётся через SetPassword и хешируется конвейером сохранения.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	Photo                string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role                 Role               `bson:"role" json:"role"`
	PasswordHash         string             `bson:"password" json:"-"`
	PasswordChangedAt    *time.Time         `bson:"passwordChangedAt,omitempty" json:"-"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time         `bson:"passwordResetExpires,omitempty" json:"-"`
	Active               bool               `bson:"active" json:"-"`

	pendingPassword string
	pendingConfirm  string
	passwordSet     bool
}

// NewUser создаёт активного пользователя с ролью user и паролем, ожидающим хеширования.
func NewUser(name, email, password, confirm string) *User {
	u := &User{
		Name:   name,
		Email:  email,
		Role:   RoleUser,
		Active: true,
	}
	u.SetPassword(password, confirm)
	return u
}

// SetPassword запоминает новый пароль и подтверждение до сохранения.
func (u *User) SetPassword(password, confirm string) {
	u.pendingPassword = password
	u.pendingConfirm = confirm
	u.passwordSet = true
}

// PendingPassword возвращает пароль и подтверждение, если они были заданы после загрузки.
func (u *User) PendingPassword() (password, confirm string, ok bool) {
	return u.pendingPassword, u.pendingConfirm, u.passwordSet
}

// ClearPendingPassword забывает открытый пароль после хеширования.
func (u *User) ClearPendingPassword() {
	u.pendingPassword = ""
	u.pendingConfirm = ""
	u.passwordSet = false
}

// PasswordChangedAfter сообщает, менялся ли пароль после выпуска токена в issuedAt.
// Сравнение идёт с точностью до секунды, как и у iat.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}

// SetResetToken сохраняет хеш токена сброса и срок его действия.
func (u *User) SetResetToken(hash string, expires time.Time) {
	u.PasswordResetToken = hash
	u.PasswordResetExpires = &expires
}

// ClearResetToken делает токен сброса недействительным.
func (u *User) ClearResetToken() {
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
}

// UserPatch частичное обновление профиля. nil означает «не менять».
type UserPatch struct {
	Name  *string
	Email *string
	Photo *string
	Role  *Role
}

// Empty сообщает, что обновлять нечего.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Photo == nil && p.Role == nil
}

// SaveOptions параметры записи пользователя.
type SaveOptions struct {
	// SkipValidation пропускает проверку схемы для частичных служебных сохранений,
	// например при выдаче токена сброса.
	SkipValidation bool
}
