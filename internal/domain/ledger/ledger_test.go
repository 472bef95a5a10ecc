package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ricemill/internal/core/apperror"
	"ricemill/internal/core/types"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		qty  float64
		want Status
	}{
		{0, StatusOutOfStock},
		{-5, StatusOutOfStock},
		{0.5, StatusLowStock},
		{99.9999, StatusLowStock},
		{100, StatusInStock},
		{800, StatusInStock},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveStatus(types.Kg(tt.qty)), "quantity %v", tt.qty)
	}
}

func TestStockRecordValidate(t *testing.T) {
	cat := DefaultCatalog()
	moist := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		rec     StockRecord
		wantErr string
	}{
		{"ok paddy", StockRecord{Family: FamilyPaddy, Type: "nadu", Warehouse: " Main ", Quantity: types.Kg(1000)}, ""},
		{"missing type", StockRecord{Family: FamilyRice, Warehouse: "Main"}, "type"},
		{"unknown type", StockRecord{Family: FamilyRice, Type: "Arborio", Warehouse: "Main"}, "type"},
		{"missing warehouse", StockRecord{Family: FamilyRice, Type: "Basmati"}, "warehouse"},
		{"negative quantity", StockRecord{Family: FamilyRice, Type: "Basmati", Warehouse: "W", Quantity: types.Kg(-1)}, "quantity"},
		{"bad unit", StockRecord{Family: FamilyRice, Type: "Basmati", Warehouse: "W", Unit: "litre"}, "unit"},
		{"bad moisture", StockRecord{Family: FamilyPaddy, Type: "Samba", Warehouse: "W", MoistureLevel: moist(140)}, "moistureLevel"},
		{"bad grade", StockRecord{Family: FamilyRice, Type: "Ponni", Warehouse: "W", Grade: "Z"}, "grade"},
		{"bad family", StockRecord{Family: "wheat", Type: "Ponni", Warehouse: "W"}, "family"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			err := rec.Validate(cat)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			appErr, _ := apperror.AsAppError(err)
			assert.Equal(t, tt.wantErr, appErr.Details["field"])
		})
	}
}

func TestStockRecordValidateNormalizes(t *testing.T) {
	rec := StockRecord{Family: FamilyPaddy, Type: "keeri samba", Warehouse: "  North  "}
	require.NoError(t, rec.Validate(DefaultCatalog()))

	assert.Equal(t, "Keeri Samba", rec.Type)
	assert.Equal(t, "North", rec.Warehouse)
	assert.Equal(t, DefaultUnit, rec.Unit)
}

func TestTouchClampsAndDerives(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := StockRecord{Quantity: types.Kg(-20), Status: StatusInStock}
	rec.Touch(now)

	assert.Equal(t, types.Quantity(0), rec.Quantity)
	assert.Equal(t, StatusOutOfStock, rec.Status)
	assert.Equal(t, now, rec.LastUpdated)
}

func TestSaleRecordJSONIncludesTotal(t *testing.T) {
	sale := SaleRecord{ID: "s1", StockID: "k1", Quantity: types.Kg(200), PricePerKg: types.MustMoney("30")}

	out, err := json.Marshal(sale)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "6000", decoded["totalAmount"])
	assert.Equal(t, "k1", decoded["stockId"])

	var back SaleRecord
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, back.TotalAmount().Equal(types.MustMoney("6000")))
}

func TestCheckMassBalance(t *testing.T) {
	ok := ThreshingRecord{PaddyQuantity: types.Kg(100), RiceQuantity: types.Kg(65), BrokenRiceQuantity: types.Kg(5), PolishRiceQuantity: types.Kg(10)}
	require.NoError(t, ok.CheckMassBalance())
	assert.Equal(t, types.Kg(20), ok.Husk())

	exact := ThreshingRecord{PaddyQuantity: types.Kg(100), RiceQuantity: types.Kg(100)}
	require.NoError(t, exact.CheckMassBalance())

	over := ThreshingRecord{PaddyQuantity: types.Kg(100), RiceQuantity: types.Kg(60), BrokenRiceQuantity: types.Kg(20), PolishRiceQuantity: types.Kg(25)}
	err := over.CheckMassBalance()
	require.Error(t, err)
	assert.True(t, apperror.IsMassBalance(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, 105.0, appErr.Details["total"])
	assert.Equal(t, 100.0, appErr.Details["paddyQuantity"])
}

func TestCheckMassBalanceDoesNotWrap(t *testing.T) {
	huge := types.Quantity(9_000_000_000_000_000_000)
	rec := ThreshingRecord{PaddyQuantity: types.Kg(100), RiceQuantity: huge, BrokenRiceQuantity: huge}

	err := rec.CheckMassBalance()
	require.Error(t, err)
	assert.True(t, apperror.IsMassBalance(err))
	assert.True(t, rec.OutputTotal() > rec.PaddyQuantity)
	assert.Equal(t, types.Quantity(0), rec.Husk())
}

func TestDeleteRequestValidate(t *testing.T) {
	assert.Error(t, DeleteRequest{Reason: "", Confirmed: true}.Validate())
	assert.Error(t, DeleteRequest{Reason: "   ", Confirmed: true}.Validate())
	assert.Error(t, DeleteRequest{Reason: "damaged", Confirmed: false}.Validate())
	assert.NoError(t, DeleteRequest{Reason: "damaged", Confirmed: true}.Validate())
}

func TestParseFamily(t *testing.T) {
	f, err := ParseFamily(" Paddy ")
	require.NoError(t, err)
	assert.Equal(t, FamilyPaddy, f)

	_, err = ParseFamily("wheat")
	assert.True(t, apperror.IsValidation(err))
}
