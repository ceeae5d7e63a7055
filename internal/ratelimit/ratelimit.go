// Package ratelimit ограничивает число запросов клиента в окне времени.
//
// RedisLimiter считает запросы фиксированным окном в Redis и общий для всех
// экземпляров сервиса. MemoryLimiter работает в памяти процесса и нужен,
// когда Redis не настроен.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Result решение лимитера по одному запросу.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

const keyPrefix = "ratelimit:"

// RedisLimiter фиксированное окно: INCR ключа клиента, EXPIRE при первом запросе окна.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter создаёт лимитер на limit запросов за window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow учитывает запрос клиента key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	const op = "ratelimit.RedisLimiter.Allow"
	key = keyPrefix + key

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if ttl < 0 {
		// ключ остался без срока жизни после сбоя между INCR и EXPIRE
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("%s: %w", op, err)
		}
		ttl = l.window
	}

	res := Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: max(l.limit-int(count), 0),
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res, nil
}

// MemoryLimiter держит по token bucket на клиента: limit токенов, пополняемых за window.
type MemoryLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	every     rate.Limit
	clients   map[string]*client
	lastSweep time.Time
	now       func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter создаёт лимитер на limit запросов за window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		every:   rate.Every(window / time.Duration(max(limit, 1))),
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

// Allow учитывает запрос клиента key.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.every, l.limit)}
		l.clients[key] = c
	}
	c.lastSeen = now

	res := Result{Limit: l.limit}
	if c.limiter.AllowN(now, 1) {
		res.Allowed = true
		res.Remaining = max(int(c.limiter.TokensAt(now)), 0)
		return res, nil
	}

	r := c.limiter.ReserveN(now, 1)
	res.RetryAfter = r.DelayFrom(now)
	r.CancelAt(now)
	return res, nil
}

// sweep забывает клиентов, не приходивших дольше окна.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.window {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}
