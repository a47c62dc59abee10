package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
)

// RedisReplayGuard implements the recurring replay guard using Redis.
// Suitable for distributed deployments where multiple scheduler instances
// must share replay state.
type RedisReplayGuard struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisReplayGuard creates a new Redis-based replay guard
func NewRedisReplayGuard(cfg config.RedisConfig, ttl time.Duration) (*RedisReplayGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisReplayGuardWithClient(client, "", ttl), nil
}

// NewRedisReplayGuardWithClient creates a guard with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisReplayGuardWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisReplayGuard {
	if keyPrefix == "" {
		keyPrefix = "ledger:replay:"
	}
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &RedisReplayGuard{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// TryAcquire claims a replay key with SETNX, atomic across instances.
// Returns true if the key was newly claimed.
func (g *RedisReplayGuard) TryAcquire(ctx context.Context, key string) (bool, error) {
	acquired, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire replay key: %w", err)
	}
	return acquired, nil
}

// Release deletes a claimed key so the occurrence can be retried.
func (g *RedisReplayGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release replay key: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (g *RedisReplayGuard) Close() error {
	return g.client.Close()
}

// Ensure RedisReplayGuard implements ReplayGuard
var _ appledger.ReplayGuard = (*RedisReplayGuard)(nil)
