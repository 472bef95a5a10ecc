// Package staged adds transactions to backends that have none.
// Writes made inside RunInTransaction are buffered per collection and
// applied only when the function returns nil. Transactions are serialized
// behind one writer lock.
package staged

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ricemill/internal/core/tx"
	"ricemill/internal/domain/store"
	"ricemill/pkg/logger"
)

var tracer = otel.Tracer("ricemill/tx")

var (
	_ tx.Manager    = (*Backend)(nil)
	_ store.Backend = (*Backend)(nil)
)

// BatchSetter is implemented by backends that can apply several
// collections in one step. Without it the commit writes them in order.
type BatchSetter interface {
	SetMany(ctx context.Context, writes map[store.Collection][]byte) error
}

// Backend wraps another store.Backend with staged transactions.
type Backend struct {
	inner store.Backend
	mu    sync.Mutex
}

// Wrap returns a transactional view of inner.
func Wrap(inner store.Backend) *Backend {
	return &Backend{inner: inner}
}

type txKey struct{}

type txState struct {
	writes map[store.Collection][]byte
	order  []store.Collection
}

func stateFrom(ctx context.Context) *txState {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		return st
	}
	return nil
}

// Get reads through the pending writes of the current transaction.
func (b *Backend) Get(ctx context.Context, c store.Collection) ([]byte, error) {
	if st := stateFrom(ctx); st != nil {
		if data, ok := st.writes[c]; ok {
			return clone(data), nil
		}
	}
	return b.inner.Get(ctx, c)
}

// Set buffers inside a transaction and writes through outside one.
func (b *Backend) Set(ctx context.Context, c store.Collection, data []byte) error {
	if st := stateFrom(ctx); st != nil {
		if _, seen := st.writes[c]; !seen {
			st.order = append(st.order, c)
		}
		st.writes[c] = clone(data)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inner.Set(ctx, c, data)
}

// Ping forwards to the wrapped backend when it supports health checks.
func (b *Backend) Ping(ctx context.Context) error {
	if p, ok := b.inner.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// RunInTransaction executes fn and commits its buffered writes on success.
// Nested calls reuse the existing transaction from context.
func (b *Backend) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if stateFrom(ctx) != nil {
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(attribute.String("tx.kind", "staged")))
	defer span.End()

	b.mu.Lock()
	defer b.mu.Unlock()

	st := &txState{writes: make(map[store.Collection][]byte)}
	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Debug(ctx, "transaction rolled back", "pending", len(st.order), "error", err)
		return err
	}

	if err := b.commit(ctx, st); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("tx.collections", len(st.order)))
	return nil
}

func (b *Backend) commit(ctx context.Context, st *txState) error {
	if len(st.order) == 0 {
		return nil
	}
	if batch, ok := b.inner.(BatchSetter); ok {
		if err := batch.SetMany(ctx, st.writes); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}
	for _, c := range st.order {
		if err := b.inner.Set(ctx, c, st.writes[c]); err != nil {
			return fmt.Errorf("commit %s: %w", c, err)
		}
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
