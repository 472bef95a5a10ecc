// Package audit keeps the edit and deletion trail of ledger records.
// Each entry carries a zstd-compressed JSON snapshot of the record as it
// was before the change.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"

	"ricemill/internal/core/apperror"
	"ricemill/internal/core/id"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/store"
	"ricemill/pkg/logger"
)

// ignoredFields never show up in a change set.
var ignoredFields = map[string]bool{"lastUpdated": true, "status": true}

// Recorder appends audit entries to the store.
type Recorder struct {
	store   *store.Store
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	now     func() time.Time
}

// NewRecorder creates a recorder. EncodeAll and DecodeAll are safe for
// concurrent use, so one encoder and decoder serve all callers.
func NewRecorder(s *store.Store) (*Recorder, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Recorder{
		store:   s,
		encoder: encoder,
		decoder: decoder,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Record stores one entry. before is snapshotted; after is only used to
// compute the change set and may be nil for deletions.
func (r *Recorder) Record(ctx context.Context, action ledger.AuditAction, c store.Collection, recordID, comment string, before, after any) error {
	raw, err := json.Marshal(before)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("encode audit snapshot: %w", err))
	}

	entry := ledger.AuditEntry{
		ID:         id.New(),
		Action:     action,
		Collection: string(c),
		RecordID:   recordID,
		Comment:    comment,
		Snapshot:   r.encoder.EncodeAll(raw, nil),
		At:         r.now(),
	}

	if after != nil {
		oldState, err := toMap(raw)
		if err != nil {
			return err
		}
		newRaw, err := json.Marshal(after)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("encode audit state: %w", err))
		}
		newState, err := toMap(newRaw)
		if err != nil {
			return err
		}
		entry.Changes = Diff(oldState, newState)
	}

	if err := r.store.AppendAudit(ctx, entry); err != nil {
		return err
	}

	logger.Debug(ctx, "audit entry recorded",
		"action", action,
		"collection", c,
		"record_id", recordID,
		"changes", len(entry.Changes))
	return nil
}

// Snapshot returns the decompressed JSON of the record before the change.
func (r *Recorder) Snapshot(e ledger.AuditEntry) (json.RawMessage, error) {
	if len(e.Snapshot) == 0 {
		return nil, nil
	}
	raw, err := r.decoder.DecodeAll(e.Snapshot, nil)
	if err != nil {
		return nil, apperror.NewStorage("decompress audit snapshot", err)
	}
	return raw, nil
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Collection store.Collection
	RecordID   string
	Action     ledger.AuditAction
	Limit      int
}

// List returns matching entries, newest first.
func (r *Recorder) List(ctx context.Context, f Filter) ([]ledger.AuditEntry, error) {
	entries, err := r.store.AuditEntries(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ledger.AuditEntry, 0, len(entries))
	for _, e := range entries {
		if f.Collection != "" && e.Collection != string(f.Collection) {
			continue
		}
		if f.RecordID != "" && e.RecordID != f.RecordID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Diff calculates the difference between two record states.
func Diff(oldState, newState map[string]any) map[string]ledger.FieldChange {
	changes := make(map[string]ledger.FieldChange)

	for key, newVal := range newState {
		if ignoredFields[key] {
			continue
		}
		oldVal, exists := oldState[key]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			changes[key] = ledger.FieldChange{Old: oldVal, New: newVal}
		}
	}

	for key, oldVal := range oldState {
		if ignoredFields[key] {
			continue
		}
		if _, exists := newState[key]; !exists {
			changes[key] = ledger.FieldChange{Old: oldVal, New: nil}
		}
	}

	return changes
}

func toMap(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("decode audit state: %w", err))
	}
	return m, nil
}
