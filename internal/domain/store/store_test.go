package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ricemill/internal/core/apperror"
	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/store"
	"ricemill/internal/infrastructure/storage/memory"
)

func TestEmptyCollections(t *testing.T) {
	s := store.New(memory.New(), nil)
	ctx := context.Background()

	stocks, err := s.Stocks(ctx, ledger.FamilyRice)
	require.NoError(t, err)
	assert.Empty(t, stocks)
	assert.NotNil(t, stocks)

	_, err = s.FindStock(ctx, "missing")
	assert.True(t, apperror.IsNotFound(err))
}

func TestStockRoundTrip(t *testing.T) {
	s := store.New(memory.New(), nil)
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	rec := ledger.StockRecord{
		ID: "p1", Family: ledger.FamilyPaddy, Type: "Nadu", Quantity: types.Kg(1000),
		Unit: "kg", Warehouse: "Main", PricePerKg: types.MustMoney("95.5"),
		Status: ledger.StatusInStock, Supplier: "Perera",
		Date: now, CreatedAt: now, LastUpdated: now,
	}
	require.NoError(t, s.SaveStocks(ctx, ledger.FamilyPaddy, []ledger.StockRecord{rec}))

	got, err := s.FindStock(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, rec.Type, got.Type)
	assert.Equal(t, rec.Quantity, got.Quantity)
	assert.True(t, rec.PricePerKg.Equal(got.PricePerKg))
	assert.Equal(t, ledger.FamilyPaddy, got.Family)
	assert.True(t, now.Equal(got.Date))
}

func TestLegacyStocksMigrateOnRead(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	require.NoError(t, backend.Set(ctx, store.RiceStocks, []byte(`[
		{"id": 1700000000000, "riceType": "Basmati", "quantity": "50", "warehouse": "North",
		 "pricePerKg": 120, "status": "In Stock", "customerName": "Threshing",
		 "lastUpdated": "2024-01-15T10:30:00.000Z"}
	]`)))
	require.NoError(t, backend.Set(ctx, store.PaddyStocks, []byte(`[
		{"id": "7", "paddyType": "Samba", "quantity": 300, "warehouse": "South",
		 "moistureLevel": "14%", "supplier": "Silva", "date": "2024-02-01"}
	]`)))

	s := store.New(backend, nil)

	rice, err := s.Stocks(ctx, ledger.FamilyRice)
	require.NoError(t, err)
	require.Len(t, rice, 1)
	assert.Equal(t, "1700000000000", rice[0].ID)
	assert.Equal(t, "Basmati", rice[0].Type)
	assert.Equal(t, types.Kg(50), rice[0].Quantity)
	assert.Equal(t, ledger.StatusLowStock, rice[0].Status, "status is re-derived")
	assert.Equal(t, "kg", rice[0].Unit)
	assert.Equal(t, "Threshing", rice[0].Customer)
	assert.Equal(t, 2024, rice[0].Date.Year())

	paddy, err := s.Stocks(ctx, ledger.FamilyPaddy)
	require.NoError(t, err)
	require.Len(t, paddy, 1)
	assert.Equal(t, "Samba", paddy[0].Type)
	require.NotNil(t, paddy[0].MoistureLevel)
	assert.Equal(t, 14.0, *paddy[0].MoistureLevel)
	assert.Equal(t, time.February, paddy[0].Date.Month())
}

func TestLegacySalesDerivePrice(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	require.NoError(t, backend.Set(ctx, store.PaddySales, []byte(`[
		{"id": 3, "stockId": 7, "quantity": 200, "totalPrice": 6000, "date": "2024-03-05"},
		{"id": 4, "stockId": 7, "customerName": "Fernando", "quantity": 10, "pricePerKg": "31", "totalAmount": 99999, "saleDate": "2024-03-06"}
	]`)))
	s := store.New(backend, nil)

	sales, err := s.Sales(ctx, ledger.FamilyPaddy)
	require.NoError(t, err)
	require.Len(t, sales, 2)

	assert.Equal(t, "7", sales[0].StockID)
	assert.Equal(t, ledger.WalkInCustomer, sales[0].CustomerName)
	assert.True(t, types.MustMoney("30").Equal(sales[0].PricePerKg))
	assert.True(t, types.MustMoney("6000").Equal(sales[0].TotalAmount()))

	// A stored totalAmount never overrides quantity × price.
	assert.True(t, types.MustMoney("310").Equal(sales[1].TotalAmount()))
	assert.Equal(t, 6, sales[1].SaleDate.Day())
}

func TestLegacyThreshingQuantityKey(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	require.NoError(t, backend.Set(ctx, store.Threshings, []byte(`[
		{"id": 1, "PaddyQuantity": 500, "riceQuantity": 320, "threshingDate": "2024-04-01"},
		{"id": 2, "paddyQuantity": 100, "riceQuantity": 60}
	]`)))
	s := store.New(backend, nil)

	recs, err := s.Threshings(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, types.Kg(500), recs[0].PaddyQuantity)
	assert.Equal(t, time.April, recs[0].Date.Month())
	assert.Equal(t, types.Kg(100), recs[1].PaddyQuantity)
}

func TestCorruptCollectionIsStorageError(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	require.NoError(t, backend.Set(ctx, store.RiceSales, []byte(`{not json`)))
	s := store.New(backend, nil)

	_, err := s.Sales(ctx, ledger.FamilyRice)
	assert.True(t, apperror.IsStorage(err))
}

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, store.Collection) ([]byte, error) {
	return nil, errors.New("unreachable")
}

func (brokenBackend) Set(context.Context, store.Collection, []byte) error {
	return errors.New("unreachable")
}

func TestBackendFailureIsStorageError(t *testing.T) {
	s := store.New(brokenBackend{}, nil)
	ctx := context.Background()

	_, err := s.AllStocks(ctx)
	assert.True(t, apperror.IsStorage(err))

	err = s.SaveThreshings(ctx, nil)
	assert.True(t, apperror.IsStorage(err))
}

func TestAppendAudit(t *testing.T) {
	s := store.New(memory.New(), nil)
	ctx := context.Background()

	require.NoError(t, s.AppendAudit(ctx, ledger.AuditEntry{ID: "a1", Action: ledger.AuditDelete, RecordID: "x", Comment: "spoiled"}))
	require.NoError(t, s.AppendAudit(ctx, ledger.AuditEntry{ID: "a2", Action: ledger.AuditUpdate, RecordID: "y", Comment: "recount"}))

	entries, err := s.AuditEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "spoiled", entries[0].Comment)
	assert.Equal(t, ledger.AuditUpdate, entries[1].Action)
}
