// Package context carries request-scoped values through the ledger.
package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext identifies one request or one scheduled job run.
type TraceContext struct {
	TraceID   string
	RequestID string
	Source    string // http, cli, scheduler
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext creates a TraceContext with generated IDs.
func NewTraceContext(source string) *TraceContext {
	return &TraceContext{
		TraceID:   uuid.New().String(),
		RequestID: uuid.New().String(),
		Source:    source,
	}
}

// Detached returns a background context that keeps the trace of ctx.
// Used for work that must finish after the caller gives up, such as rollbacks.
func Detached(ctx context.Context) context.Context {
	if t := GetTrace(ctx); t != nil {
		return WithTrace(context.Background(), t)
	}
	return context.Background()
}
