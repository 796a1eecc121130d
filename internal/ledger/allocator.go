package ledger

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyAccountPool is returned when no ledger accounts are available to
// assign.
var ErrEmptyAccountPool = errors.New("ledger account pool is empty")

// Cursor is the source of the allocator's assignment index. The production
// implementation is a Redis counter, making concurrent registrations see
// distinct consecutive values.
type Cursor interface {
	Next(ctx context.Context) (int64, error)
}

// AccountAllocator hands out ledger addresses round-robin over a fixed
// account pool. The pool is owned here; the cursor, not a live user count,
// decides the index, so concurrent assignments cannot collide on the same
// slot ordering.
type AccountAllocator struct {
	pool   []string
	cursor Cursor
}

// NewAccountAllocator creates an allocator over the given pool.
func NewAccountAllocator(pool []string, cursor Cursor) (*AccountAllocator, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyAccountPool
	}
	return &AccountAllocator{pool: pool, cursor: cursor}, nil
}

// Assign returns the next address in round-robin order.
func (a *AccountAllocator) Assign(ctx context.Context) (string, error) {
	n, err := a.cursor.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("advancing account cursor: %w", err)
	}

	// Cursors start at 1; the first assignment takes pool[0].
	idx := (n - 1) % int64(len(a.pool))
	if idx < 0 {
		idx += int64(len(a.pool))
	}
	return a.pool[idx], nil
}

// PoolSize returns the number of accounts in the pool.
func (a *AccountAllocator) PoolSize() int {
	return len(a.pool)
}
