// Package users содержит бизнес-логику профилей пользователей и конвейер
// сохранения, через который проходит каждая запись пользователя.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/lib/queryfeatures"
	"github.com/magabrotheeeer/natours/internal/lib/validate"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/storage"
)

// Repository операции хранилища пользователей, нужные сервису.
type Repository interface {
	FindByIDUnscoped(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, q queryfeatures.Query) ([]*models.User, error)
	Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Schema поля пользователя, доступные для фильтрации и сортировки.
var Schema = queryfeatures.Schema{
	"_id":   queryfeatures.ObjectID,
	"name":  queryfeatures.String,
	"email": queryfeatures.String,
	"role":  queryfeatures.String,
	"photo": queryfeatures.String,
}

// HiddenFields никогда не отдаются и не участвуют в запросах.
var HiddenFields = []string{"password", "passwordChangedAt", "passwordResetToken", "passwordResetExpires", "active"}

const notFoundMessage = "No user found with that ID"

// UpdateMeInput изменения собственного профиля. Поля пароля здесь запрещены.
type UpdateMeInput struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"passwordConfirm"`
}

// AdminUpdateInput изменения пользователя администратором.
type AdminUpdateInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Photo *string `json:"photo"`
	Role  *string `json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
}

// Service управляет профилями пользователей.
type Service struct {
	repo     Repository
	validate *validator.Validate
	log      *slog.Logger
}

// NewService создаёт сервис пользователей.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validate.New(),
		log:      log,
	}
}

// UpdateMe меняет имя и email текущего пользователя.
func (s *Service) UpdateMe(ctx context.Context, userID string, in UpdateMeInput) (*models.User, error) {
	const op = "services.users.UpdateMe"

	if in.Password != "" || in.PasswordConfirm != "" {
		return nil, apperr.Validation("Do not send password related fields to this route")
	}
	in.Name, in.Email = trimmed(in.Name), normalizedEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	patch := models.UserPatch{Name: in.Name, Email: in.Email}
	if patch.Empty() {
		return nil, apperr.Validation("Nothing to update. Provide name or email")
	}

	u, err := s.repo.Update(ctx, userID, patch)
	if err != nil {
		return nil, s.notFound(op, err)
	}
	return u, nil
}

// DeleteMe деактивирует текущего пользователя.
func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	const op = "services.users.DeleteMe"
	if err := s.repo.Deactivate(ctx, userID); err != nil {
		return s.notFound(op, err)
	}
	s.log.Info("user deactivated", slog.String("op", op), slog.String("user_id", userID))
	return nil
}

// List возвращает активных пользователей с фильтрами, сортировкой и пагинацией из params.
func (s *Service) List(ctx context.Context, params url.Values) ([]*models.User, error) {
	const op = "services.users.List"

	q, err := queryfeatures.Build(nil, params, queryfeatures.Options{
		Schema:      Schema,
		Hidden:      HiddenFields,
		DefaultSort: "name",
	})
	if err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Get возвращает пользователя по id, включая деактивированных.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "services.users.Get"
	u, err := s.repo.FindByIDUnscoped(ctx, id)
	if err != nil {
		return nil, s.notFound(op, err)
	}
	return u, nil
}

// Update меняет профиль и роль пользователя. Пароль так поменять нельзя.
func (s *Service) Update(ctx context.Context, id string, in AdminUpdateInput) (*models.User, error) {
	const op = "services.users.Update"

	in.Name, in.Email = trimmed(in.Name), normalizedEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	patch := models.UserPatch{Name: in.Name, Email: in.Email, Photo: in.Photo}
	if in.Role != nil {
		role, err := models.ParseRole(*in.Role)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		patch.Role = &role
	}
	if patch.Empty() {
		return nil, apperr.Validation("Nothing to update")
	}

	u, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.notFound(op, err)
	}
	return u, nil
}

// Delete удаляет пользователя.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "services.users.Delete"
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.notFound(op, err)
	}
	return nil
}

func (s *Service) notFound(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(notFoundMessage)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := normalizeName(*s)
	return &v
}

func normalizedEmail(s *string) *string {
	if s == nil {
		return nil
	}
	v := NormalizeEmail(*s)
	return &v
}
