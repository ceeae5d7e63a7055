package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/natours/internal/lib/validate"
	"github.com/magabrotheeeer/natours/internal/models"
)

// Hasher хеширует пароли.
type Hasher interface {
	Hash(plain string) (string, error)
}

// passwordChangeBackdate сдвиг отметки смены пароля назад, чтобы токен,
// выпущенный в ту же секунду, не считался устаревшим.
const passwordChangeBackdate = time.Second

type profileSchema struct {
	Name  string      `json:"name" validate:"required,max=100"`
	Email string      `json:"email" validate:"required,email"`
	Role  models.Role `json:"role" validate:"required,oneof=user guide lead-guide admin"`
}

type passwordSchema struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Pipeline шаги перед записью пользователя: нормализация, проверка схемы,
// хеширование нового пароля и отметка времени смены пароля.
type Pipeline struct {
	hasher   Hasher
	validate *validator.Validate
	now      func() time.Time
}

// NewPipeline создаёт конвейер сохранения пользователя.
func NewPipeline(hasher Hasher, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		hasher:   hasher,
		validate: validate.New(),
		now:      now,
	}
}

// BeforeCreate готовит нового пользователя. Пароль обязателен, отметка смены пароля не ставится.
func (p *Pipeline) BeforeCreate(_ context.Context, u *models.User) error {
	const op = "services.users.BeforeCreate"

	normalize(u)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if err := p.validateUser(u, true); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := p.hashPassword(u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// BeforeSave готовит существующего пользователя к перезаписи.
func (p *Pipeline) BeforeSave(_ context.Context, u *models.User, opts models.SaveOptions) error {
	const op = "services.users.BeforeSave"

	normalize(u)
	if !opts.SkipValidation {
		if err := p.validateUser(u, false); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if _, _, pending := u.PendingPassword(); !pending {
		return nil
	}
	if err := p.hashPassword(u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	changedAt := p.now().Add(-passwordChangeBackdate).UTC()
	u.PasswordChangedAt = &changedAt
	return nil
}

func (p *Pipeline) validateUser(u *models.User, requirePassword bool) error {
	if err := p.validate.Struct(profileSchema{Name: u.Name, Email: u.Email, Role: u.Role}); err != nil {
		return err
	}
	password, confirm, pending := u.PendingPassword()
	if !pending && !requirePassword {
		return nil
	}
	return p.validate.Struct(passwordSchema{Password: password, PasswordConfirm: confirm})
}

func (p *Pipeline) hashPassword(u *models.User) error {
	password, _, pending := u.PendingPassword()
	if !pending {
		return nil
	}
	digest, err := p.hasher.Hash(password)
	if err != nil {
		return err
	}
	u.PasswordHash = digest
	u.ClearPendingPassword()
	return nil
}

func normalize(u *models.User) {
	u.Name = normalizeName(u.Name)
	u.Email = NormalizeEmail(u.Email)
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
