// Package mongodb реализует хранилище Natours поверх MongoDB.
//
// Репозитории явно добавляют фильтры по умолчанию к каждому чтению
// (неактивные пользователи, секретные туры) и прогоняют пользователя через
// конвейер сохранения перед каждой записью.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/magabrotheeeer/natours/internal/config"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
)

const (
	usersCollection = "users"
	toursCollection = "tours"
)

// Storage подключение к MongoDB и выбранная база.
type Storage struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// New подключается к MongoDB и ждёт ответа на ping, повторяя попытки с экспоненциальной задержкой.
func New(ctx context.Context, cfg config.Mongo, log *slog.Logger) (*Storage, error) {
	const op = "storage.mongodb.New"

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	base := cfg.ConnectBackoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	attempt := 0
	backoff := retry.WithMaxRetries(cfg.ConnectRetries, retry.NewExponential(base))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			log.Warn("mongo ping failed", slog.Int("attempt", attempt), sl.Err(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("connected to mongo", slog.String("database", cfg.Database), slog.Int("attempts", attempt))
	return &Storage{
		Client: client,
		DB:     client.Database(cfg.Database),
	}, nil
}

// Ping проверяет доступность базы.
func (s *Storage) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, readpref.Primary())
}

// Close закрывает соединения с базой.
func (s *Storage) Close(ctx context.Context) error {
	const op = "storage.mongodb.Close"
	if err := s.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
