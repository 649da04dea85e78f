package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/todolistapi/backend/internal/config"
)

// RateLimiter counts requests per client within a fixed window. Allow reports
// whether the client is still under the configured limit.
type RateLimiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
	Close() error
}

// ==================== REDIS IMPLEMENTATION ====================

type redisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	logger *slog.Logger
}

// NewRedisRateLimiter creates a Redis-backed fixed-window rate limiter
func NewRedisRateLimiter(cfg *config.Config, logger *slog.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDB),
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("❌ [RateLimiter] Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [RateLimiter] Connected to Redis",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
	)

	return &redisRateLimiter{
		client: client,
		limit:  cfg.RateLimitRequests,
		window: time.Duration(cfg.RateLimitWindowSecs) * time.Second,
		logger: logger,
	}, nil
}

// NewRedisRateLimiterWithClient wires an existing client (used by tests)
func NewRedisRateLimiterWithClient(client *redis.Client, limit int64, window time.Duration, logger *slog.Logger) RateLimiter {
	return &redisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

func rateKey(clientID string) string {
	return fmt.Sprintf("rate:%s", clientID)
}

func (r *redisRateLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	key := rateKey(clientID)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to increment counter", "client", clientID, "error", err)
		// Fail open: a broken counter must not take the API down
		return true, err
	}

	// First hit in the window owns the expiry
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			r.logger.Error("❌ [RateLimiter] Failed to set window expiry", "client", clientID, "error", err)
		}
	}

	return count <= r.limit, nil
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// ==================== IN-MEMORY IMPLEMENTATION ====================

type windowCount struct {
	count int64
	start time.Time
}

type memoryRateLimiter struct {
	mu      sync.Mutex
	clients map[string]windowCount
	limit   int64
	window  time.Duration
	now     func() time.Time
}

// NewMemoryRateLimiter creates an in-process fixed-window rate limiter. The
// clock is injectable so tests can drive the window deterministically; pass
// nil for wall-clock time. Used as the fallback when Redis is unavailable.
func NewMemoryRateLimiter(limit int64, window time.Duration, now func() time.Time) RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &memoryRateLimiter{
		clients: make(map[string]windowCount),
		limit:   limit,
		window:  window,
		now:     now,
	}
}

func (m *memoryRateLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.clients[clientID]
	if !ok || now.Sub(entry.start) >= m.window {
		entry = windowCount{start: now}
	}

	entry.count++
	m.clients[clientID] = entry

	return entry.count <= m.limit, nil
}

func (m *memoryRateLimiter) Close() error {
	return nil
}

// ==================== GIN MIDDLEWARE ====================

// RateLimitMiddleware throttles requests per client IP
type RateLimitMiddleware struct {
	limiter RateLimiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware instance
func NewRateLimitMiddleware(limiter RateLimiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Handle rejects clients above the limit with 429
func (m *RateLimitMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := m.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Already logged by the limiter; keep serving
			c.Next()
			return
		}

		if !allowed {
			m.logger.Warn("⚠️ [RateLimiter] Rate limit exceeded",
				"client", c.ClientIP(),
				"path", c.Request.URL.Path,
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded.",
				"message":    "You have exceeded the number of allowed requests. Please try again later.",
				"statusCode": http.StatusTooManyRequests,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
