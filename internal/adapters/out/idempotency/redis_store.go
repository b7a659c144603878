// Package idempotency stores Idempotency-Key reservations for order creation in Redis.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const (
	// keyOrderCreate maps a scoped client key to the order id it created.
	keyOrderCreate = "idem:order:create:%s"

	// DefaultTTL is how long a key is remembered.
	DefaultTTL = 24 * time.Hour
)

// RedisStore implements ports.IdempotencyStore with SET NX.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ ports.IdempotencyStore = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// NewClient connects to addr with short timeouts; the store is best-effort.
func NewClient(addr string, timeout time.Duration) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
}

func (s *RedisStore) Reserve(ctx context.Context, key string, orderID kernel.UUID) (kernel.UUID, bool, error) {
	if key == "" {
		return kernel.UUID{}, false, errs.NewValueIsRequiredError("idempotencyKey")
	}
	if err := orderID.Validate(); err != nil {
		return kernel.UUID{}, false, err
	}

	redisKey := fmt.Sprintf(keyOrderCreate, key)
	reserved, err := s.rdb.SetNX(ctx, redisKey, orderID.String(), s.ttl).Result()
	if err != nil {
		return kernel.UUID{}, false, errs.NewUpstreamUnavailableErrorWithCause("redis", err)
	}
	if reserved {
		return orderID, true, nil
	}

	existing, err := s.rdb.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		// released between SETNX and GET; the caller may retry the whole request
		return kernel.UUID{}, false, errs.NewUpstreamUnavailableErrorWithCause("redis",
			fmt.Errorf("idempotency key %q vanished", key))
	}
	if err != nil {
		return kernel.UUID{}, false, errs.NewUpstreamUnavailableErrorWithCause("redis", err)
	}

	id, err := kernel.UUIDFromString(existing)
	if err != nil {
		return kernel.UUID{}, false, err
	}
	return id, false, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, fmt.Sprintf(keyOrderCreate, key)).Err(); err != nil {
		return errs.NewUpstreamUnavailableErrorWithCause("redis", err)
	}
	return nil
}
