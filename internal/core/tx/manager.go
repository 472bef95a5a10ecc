// Package tx defines the transactional boundary used by ledger operations.
// Backends without native transactions stage writes until commit.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
//
// Domain services depend on this interface, not concrete implementations.
// Implementations live in infrastructure/storage.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, every write made through ctx is discarded.
	// If fn succeeds, the writes are committed together.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ManagerFunc adapts a function to Manager.
type ManagerFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// RunInTransaction calls f.
func (f ManagerFunc) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}
