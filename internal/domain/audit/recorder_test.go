package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/store"
	"ricemill/internal/infrastructure/storage/memory"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := NewRecorder(store.New(memory.New(), nil))
	require.NoError(t, err)
	return r
}

func TestRecordUpdate(t *testing.T) {
	ctx := context.Background()
	r := newTestRecorder(t)

	before := ledger.StockRecord{ID: "r1", Family: ledger.FamilyRice, Type: "Nadu", Quantity: types.Kg(500), Warehouse: "A"}
	after := before
	after.Quantity = types.Kg(450)
	after.Status = ledger.StatusInStock

	require.NoError(t, r.Record(ctx, ledger.AuditUpdate, store.RiceStocks, "r1", "recount", before, after))

	entries, err := r.List(ctx, Filter{RecordID: "r1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, ledger.AuditUpdate, e.Action)
	assert.Equal(t, "rice_stocks", e.Collection)
	assert.Equal(t, "recount", e.Comment)
	require.Contains(t, e.Changes, "quantity")
	assert.Equal(t, float64(500), e.Changes["quantity"].Old)
	assert.Equal(t, float64(450), e.Changes["quantity"].New)
	assert.NotContains(t, e.Changes, "status")
	assert.NotContains(t, e.Changes, "type")

	raw, err := r.Snapshot(e)
	require.NoError(t, err)
	var snap ledger.StockRecord
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, types.Kg(500), snap.Quantity)
}

func TestRecordDeleteHasNoChanges(t *testing.T) {
	ctx := context.Background()
	r := newTestRecorder(t)

	sale := ledger.SaleRecord{ID: "s1", Family: ledger.FamilyRice, Quantity: types.Kg(10)}
	require.NoError(t, r.Record(ctx, ledger.AuditDelete, store.RiceSales, "s1", "duplicate entry", sale, nil))

	entries, err := r.List(ctx, Filter{Action: ledger.AuditDelete})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Changes)
	assert.NotEmpty(t, entries[0].Snapshot)
}

func TestListNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	r := newTestRecorder(t)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	r.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Hour)
	}

	for _, recID := range []string{"a", "b", "c"} {
		require.NoError(t, r.Record(ctx, ledger.AuditDelete, store.Threshings, recID, "gone", map[string]string{"id": recID}, nil))
	}

	entries, err := r.List(ctx, Filter{Collection: store.Threshings, Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].RecordID)
	assert.Equal(t, "b", entries[1].RecordID)
}

func TestDiff(t *testing.T) {
	changes := Diff(
		map[string]any{"a": 1.0, "b": "x", "gone": true, "lastUpdated": "t1"},
		map[string]any{"a": 2.0, "b": "x", "new": "y", "lastUpdated": "t2"},
	)

	assert.Len(t, changes, 3)
	assert.Equal(t, ledger.FieldChange{Old: 1.0, New: 2.0}, changes["a"])
	assert.Equal(t, ledger.FieldChange{Old: nil, New: "y"}, changes["new"])
	assert.Equal(t, ledger.FieldChange{Old: true, New: nil}, changes["gone"])
}
