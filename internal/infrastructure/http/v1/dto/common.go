// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"ricemill/internal/core/apperror"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/store"
)

// --- List Response ---

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}

// NewListResponse never returns a null items array.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, TotalCount: len(items)}
}

// --- Common Responses ---

// SuccessResponse represents a simple success response.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse mirrors the body rendered by the error middleware.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Deletion ---

// DeleteRequest carries the reason and confirmation every delete needs.
type DeleteRequest struct {
	Reason    string `json:"reason"`
	Confirmed bool   `json:"confirmed"`
}

// ToDomain converts the request.
func (r DeleteRequest) ToDomain() ledger.DeleteRequest {
	return ledger.DeleteRequest{Reason: r.Reason, Confirmed: r.Confirmed}
}

// parseDate accepts the timestamp forms the store reads. Empty means unset.
func parseDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := store.ParseTime(raw)
	if err != nil {
		return nil, apperror.NewFieldValidation(field, "invalid date, expected YYYY-MM-DD or RFC3339")
	}
	return &t, nil
}
