package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		notFound   bool
		massBal    bool
		storage    bool
		status     int
	}{
		{"validation", NewValidation("bad"), true, false, false, false, http.StatusBadRequest},
		{"oversell", NewInsufficientStock("s1", 10, 5), true, false, false, false, http.StatusUnprocessableEntity},
		{"not found", NewNotFound("stock", "s1"), false, true, false, false, http.StatusNotFound},
		{"mass balance", NewMassBalance(105, 100), false, false, true, false, http.StatusUnprocessableEntity},
		{"storage", NewStorage("set", errors.New("disk full")), false, false, false, true, http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("record sale: %w", NewNotFound("stock", "x")), false, true, false, false, http.StatusNotFound},
		{"plain", errors.New("boom"), false, false, false, false, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.massBal, IsMassBalance(tt.err))
			assert.Equal(t, tt.storage, IsStorage(tt.err))
			assert.Equal(t, tt.status, GetHTTPStatus(tt.err))
		})
	}
}

func TestMassBalanceDetails(t *testing.T) {
	err := NewMassBalance(105, 100)

	assert.Equal(t, 105.0, err.Details["total"])
	assert.Equal(t, 100.0, err.Details["paddyQuantity"])
	assert.Contains(t, err.Message, "105.00")
}

func TestStorageUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorage("get rice_stocks", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
