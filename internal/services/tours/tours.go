// Package tours содержит бизнес-логику туров: выборки, CRUD, агрегаты и кэширование чтений.
package tours

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/lib/queryfeatures"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
	"github.com/magabrotheeeer/natours/internal/lib/validate"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/storage"
)

const (
	notFoundMessage = "No tour was matched with the given ID"

	keyByID     = "tours:id:"
	keyStats    = "tours:stats"
	keyPlanBase = "tours:plan:"

	minPlanYear = 1970
	maxPlanYear = 9999
)

// Repository хранилище туров.
type Repository interface {
	Find(ctx context.Context, q queryfeatures.Query) ([]*models.Tour, error)
	FindByID(ctx context.Context, id string) (*models.Tour, error)
	Create(ctx context.Context, t *models.Tour) error
	Update(ctx context.Context, id string, patch models.TourPatch) (*models.Tour, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) ([]models.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlan, error)
}

// Cache кэш чтений.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Service сервис туров.
type Service struct {
	repo     Repository
	cache    Cache
	ttl      time.Duration
	schema   queryfeatures.Schema
	validate *validator.Validate
	log      *slog.Logger
}

// NewService создаёт сервис туров. schema описывает типы полей для фильтров списка.
func NewService(repo Repository, cache Cache, ttl time.Duration, schema queryfeatures.Schema, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		ttl:      ttl,
		schema:   schema,
		validate: validate.New(),
		log:      log,
	}
}

// TopFiveCheap подставляет параметры выборки «пять лучших и дешёвых» поверх params.
func TopFiveCheap(params url.Values) url.Values {
	out := url.Values{}
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	out.Set("limit", "5")
	out.Set("sort", "-ratingsAverage,price")
	out.Set("fields", "name,duration,price,difficulty,summary,ratingsAverage")
	return out
}

// List возвращает видимые туры по параметрам запроса.
func (s *Service) List(ctx context.Context, params url.Values) ([]*models.Tour, error) {
	const op = "services.tours.List"

	q, err := queryfeatures.Build(nil, params, queryfeatures.Options{Schema: s.schema})
	if err != nil {
		return nil, err
	}
	list, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Get возвращает тур по id, сначала из кэша.
func (s *Service) Get(ctx context.Context, id string) (*models.Tour, error) {
	const op = "services.tours.Get"

	key := keyByID + id
	var cached models.Tour
	if s.fromCache(ctx, op, key, &cached) {
		return &cached, nil
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.notFound(op, err)
	}
	s.toCache(ctx, op, key, t)
	return t, nil
}

// Create проверяет и сохраняет новый тур.
func (s *Service) Create(ctx context.Context, t *models.Tour) (*models.Tour, error) {
	const op = "services.tours.Create"

	t.ID = primitive.NilObjectID
	t.Version = 0
	t.Normalize()
	if err := s.validate.Struct(t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("tour created", slog.String("op", op), slog.String("tour_id", t.ID.Hex()))
	s.invalidate(ctx, op, "")
	return t, nil
}

// Update частично обновляет тур. Скидка должна остаться меньше цены.
func (s *Service) Update(ctx context.Context, id string, patch models.TourPatch) (*models.Tour, error) {
	const op = "services.tours.Update"

	patch.Normalize()
	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if patch.Empty() {
		return nil, apperr.Validation("Nothing to update")
	}
	if err := s.checkDiscount(ctx, id, patch); err != nil {
		return nil, err
	}

	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.notFound(op, err)
	}
	s.invalidate(ctx, op, id)
	return t, nil
}

func (s *Service) checkDiscount(ctx context.Context, id string, patch models.TourPatch) error {
	const op = "services.tours.checkDiscount"

	if patch.PriceDiscount == nil && patch.Price == nil {
		return nil
	}
	var price, discount float64
	if patch.Price == nil || patch.PriceDiscount == nil {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return s.notFound(op, err)
		}
		price, discount = current.Price, current.PriceDiscount
	}
	if patch.Price != nil {
		price = *patch.Price
	}
	if patch.PriceDiscount != nil {
		discount = *patch.PriceDiscount
	}
	if discount > 0 && discount >= price {
		return apperr.Validation(fmt.Sprintf("Discount price (%s) should be below regular price", strconv.FormatFloat(discount, 'f', -1, 64)))
	}
	return nil
}

// Delete удаляет тур.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "services.tours.Delete"
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.notFound(op, err)
	}
	s.invalidate(ctx, op, id)
	return nil
}

// Stats статистика по сложности.
func (s *Service) Stats(ctx context.Context) ([]models.TourStats, error) {
	const op = "services.tours.Stats"

	var cached []models.TourStats
	if s.fromCache(ctx, op, keyStats, &cached) {
		return cached, nil
	}
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.toCache(ctx, op, keyStats, stats)
	return stats, nil
}

// MonthlyPlan план стартов по месяцам. year приходит строкой из пути.
func (s *Service) MonthlyPlan(ctx context.Context, rawYear string) ([]models.MonthlyPlan, error) {
	const op = "services.tours.MonthlyPlan"

	year, err := strconv.Atoi(rawYear)
	if err != nil || year < minPlanYear || year > maxPlanYear {
		return nil, apperr.Cast("year", rawYear)
	}

	key := keyPlanBase + strconv.Itoa(year)
	var cached []models.MonthlyPlan
	if s.fromCache(ctx, op, key, &cached) {
		return cached, nil
	}
	plan, err := s.repo.MonthlyPlan(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.toCache(ctx, op, key, plan)
	return plan, nil
}

func (s *Service) fromCache(ctx context.Context, op, key string, result any) bool {
	found, err := s.cache.Get(ctx, key, result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("op", op), slog.String("key", key), sl.Err(err))
		return false
	}
	return found
}

func (s *Service) toCache(ctx context.Context, op, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warn("failed to add to cache", slog.String("op", op), slog.String("key", key), sl.Err(err))
	}
}

// invalidate сбрасывает агрегаты и, если id задан, кэш самого тура.
func (s *Service) invalidate(ctx context.Context, op, id string) {
	keys := []string{keyStats}
	if id != "" {
		keys = append(keys, keyByID+id)
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("op", op), sl.Err(err))
	}
	if err := s.cache.InvalidatePrefix(ctx, keyPlanBase); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("op", op), sl.Err(err))
	}
}

func (s *Service) notFound(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(notFoundMessage)
	}
	return fmt.Errorf("%s: %w", op, err)
}
