// Package natours собирает HTTP-приложение Natours: хранилища, сервисы и маршруты.
package natours

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/natours/internal/cache"
	"github.com/magabrotheeeer/natours/internal/config"
	"github.com/magabrotheeeer/natours/internal/http/handlers/health"
	"github.com/magabrotheeeer/natours/internal/http/middlewarectx"
	"github.com/magabrotheeeer/natours/internal/lib/jwt"
	"github.com/magabrotheeeer/natours/internal/lib/password"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
	"github.com/magabrotheeeer/natours/internal/lib/smtp"
	"github.com/magabrotheeeer/natours/internal/metrics"
	"github.com/magabrotheeeer/natours/internal/migrations"
	"github.com/magabrotheeeer/natours/internal/ratelimit"
	authservice "github.com/magabrotheeeer/natours/internal/services/auth"
	"github.com/magabrotheeeer/natours/internal/services/sender"
	tourservice "github.com/magabrotheeeer/natours/internal/services/tours"
	userservice "github.com/magabrotheeeer/natours/internal/services/users"
	"github.com/magabrotheeeer/natours/internal/storage/mongodb"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server    *http.Server
	serve     func() error
	logger    *slog.Logger
	db        *mongodb.Storage
	cache     *cache.Cache
	closeOnce sync.Once
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.natours.New"

	db, err := mongodb.New(ctx, cfg.Mongo, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.Client, cfg.Mongo.Database, cfg.Mongo.MigrationsPath); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	checks := map[string]health.Pinger{"mongo": db}

	var (
		tourCache tourservice.Cache = cache.Noop{}
		limiter   middlewarectx.Limiter
		redisDB   *cache.Cache
	)
	if cfg.Redis.Address != "" {
		redisDB, err = cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tourCache = redisDB
		limiter = ratelimit.NewRedisLimiter(redisDB.Db, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		checks["redis"] = redisDB
	} else {
		logger.Warn("redis address is empty, using in-memory rate limiter without cache")
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	metrics.Register(prometheus.DefaultRegisterer)

	hasher := password.NewHasher(password.DefaultCost)
	userRepo := mongodb.NewUserRepository(db.DB, userservice.NewPipeline(hasher, time.Now))
	tourRepo := mongodb.NewTourRepository(db.DB)

	mailer := sender.NewService(smtp.NewTransport(cfg.SMTP, logger), logger)
	tokens := jwt.NewMaker(cfg.JWT.Secret, cfg.JWT.TokenTTL)

	deps := Deps{
		Auth:    authservice.NewService(userRepo, tokens, hasher, mailer, logger, authservice.WithSendTimeout(cfg.SMTP.SendTimeout)),
		Users:   userservice.NewService(userRepo, logger),
		Tours:   tourservice.NewService(tourRepo, tourCache, cfg.Cache.TTL, mongodb.TourSchema, logger),
		Limiter: limiter,
		Checks:  checks,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, cfg, logger, deps)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		serve:  srv.ListenAndServe,
		logger: logger,
		db:     db,
		cache:  redisDB,
	}, nil
}

// Run обслуживает запросы до отмены ctx или ошибки сервера. Паника сервера
// возвращается как ошибка. Перед выходом закрываются Mongo и Redis.
func (a *App) Run(ctx context.Context) (err error) {
	const op = "app.natours.Run"

	defer a.Close()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", op, r)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("%s: server panic: %v", op, r)
			}
		}()
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.serve()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

// Close отключает Mongo и Redis. Повторные вызовы ничего не делают.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if a.db != nil {
			if err := a.db.Close(ctx); err != nil {
				a.logger.Error("failed to close mongo client", sl.Err(err))
			}
		}
		if a.cache != nil {
			if err := a.cache.Close(); err != nil {
				a.logger.Error("failed to close redis client", sl.Err(err))
			}
		}
	})
}
