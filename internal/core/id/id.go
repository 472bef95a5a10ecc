// Package id provides UUIDv7 generation for ledger records.
// UUIDv7 is time-ordered, so ids sort in creation order.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a new UUIDv7 as its canonical string form.
// Records keep ids as strings because legacy collections stored numeric ids.
func New() string {
	v, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.New().String()
	}
	return v.String()
}

// Normalize trims an id taken from user input or a legacy record.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
