package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles the per-line-item payment creation latch in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquirePaymentLock attempts to acquire the create-in-flight latch for the
// given appointment line item. Returns true if the latch was acquired, false
// if another create is already in flight.
func (s *LockStore) AcquirePaymentLock(ctx context.Context, lineID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:payment:%s", lineID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleasePaymentLock releases the latch for the given line item.
func (s *LockStore) ReleasePaymentLock(ctx context.Context, lineID string) error {
	key := fmt.Sprintf("lock:payment:%s", lineID)

	return s.client.Del(ctx, key).Err()
}
