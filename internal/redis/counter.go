// Package redis holds the Redis-backed stores used by the service.
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const accountCursorKey = "ledger:account:cursor"

// CounterStore provides atomic monotonically increasing counters. It backs
// the ledger account allocator so concurrent registrations never derive
// the same assignment index from a racy document count.
type CounterStore struct {
	client *redis.Client
}

// NewCounterStore creates a new CounterStore.
func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

// Next atomically increments and returns the account cursor. The first
// call returns 1.
func (s *CounterStore) Next(ctx context.Context) (int64, error) {
	return s.client.Incr(ctx, accountCursorKey).Result()
}
