package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ricemill/internal/core/apperror"
	"ricemill/internal/core/types"
	"ricemill/internal/domain/audit"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/stock"
	"ricemill/internal/domain/store"
	"ricemill/internal/infrastructure/storage/memory"
	"ricemill/internal/infrastructure/storage/staged"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func seed(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	ctx := context.Background()
	s := store.New(memory.New(), nil)

	paddy := []ledger.StockRecord{
		{ID: "p1", Family: ledger.FamilyPaddy, Type: "Nadu", Quantity: types.Kg(1000), Unit: "kg", Warehouse: "North", PricePerKg: types.MustMoney("25"), Supplier: "Perera", Date: day(2024, 1, 5), LastUpdated: day(2024, 1, 5)},
		{ID: "p2", Family: ledger.FamilyPaddy, Type: "Samba", Quantity: types.Kg(50), Unit: "kg", Warehouse: "South", PricePerKg: types.MustMoney("30"), Supplier: "Fernando", Date: day(2024, 2, 10), LastUpdated: day(2024, 2, 10)},
	}
	rice := []ledger.StockRecord{
		{ID: "r1", Family: ledger.FamilyRice, Type: "Basmati", Quantity: types.Kg(300), Unit: "kg", Warehouse: "North", PricePerKg: types.MustMoney("120"), Customer: "Silva", Grade: "A", Date: day(2024, 1, 20), LastUpdated: day(2024, 1, 20)},
	}
	for i := range paddy {
		paddy[i].Status = ledger.DeriveStatus(paddy[i].Quantity)
	}
	for i := range rice {
		rice[i].Status = ledger.DeriveStatus(rice[i].Quantity)
	}
	require.NoError(t, s.SaveStocks(ctx, ledger.FamilyPaddy, paddy))
	require.NoError(t, s.SaveStocks(ctx, ledger.FamilyRice, rice))

	require.NoError(t, s.SaveSales(ctx, ledger.FamilyPaddy, []ledger.SaleRecord{
		{ID: "ps1", Family: ledger.FamilyPaddy, StockID: "p1", CustomerName: "Walk-in", Quantity: types.Kg(200), PricePerKg: types.MustMoney("30"), SaleDate: day(2024, 1, 15), CreatedAt: day(2024, 1, 15)},
		{ID: "ps2", Family: ledger.FamilyPaddy, StockID: "p2", CustomerName: "Jaya Mills", Quantity: types.Kg(10), PricePerKg: types.MustMoney("35"), SaleDate: day(2024, 2, 11), CreatedAt: day(2024, 2, 11)},
		{ID: "ps3", Family: ledger.FamilyPaddy, StockID: "gone", CustomerName: "Walk-in", Quantity: types.Kg(5), PricePerKg: types.MustMoney("100"), SaleDate: day(2024, 1, 15), CreatedAt: day(2024, 1, 15)},
	}))
	require.NoError(t, s.SaveThreshings(ctx, []ledger.ThreshingRecord{
		{ID: "t1", PaddyType: "Nadu", PaddyQuantity: types.Kg(100), RiceType: "Nadu", RiceQuantity: types.Kg(60), BrokenRiceQuantity: types.Kg(20), PolishRiceQuantity: types.Kg(15), Warehouse: "North", Date: day(2024, 1, 8), CreatedAt: day(2024, 1, 8)},
		{ID: "t2", PaddyType: "Samba", PaddyQuantity: types.Kg(40), RiceType: "Samba", RiceQuantity: types.Kg(25), BrokenRiceQuantity: types.Kg(5), Warehouse: "South", Date: day(2024, 3, 1), CreatedAt: day(2024, 3, 1)},
	}))

	return NewService(s), s
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestQueryReportRangeAndOrder(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	entries, err := svc.QueryReport(ctx, Query{
		Type: PaddySale,
		From: ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		To:   ptr(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ps1", "ps3"}, ids(entries), "ties keep insertion order")

	all, err := svc.QueryReport(ctx, Query{Type: PaddySale})
	require.NoError(t, err)
	assert.Equal(t, []string{"ps2", "ps1", "ps3"}, ids(all))
}

func TestQueryReportSameDayKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New(), nil)
	morning := time.Date(2024, 4, 2, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 4, 2, 21, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveStocks(ctx, ledger.FamilyRice, []ledger.StockRecord{
		{ID: "early", Family: ledger.FamilyRice, Type: "Nadu", Quantity: types.Kg(10), Unit: "kg", Warehouse: "A", Date: morning},
		{ID: "older-day", Family: ledger.FamilyRice, Type: "Nadu", Quantity: types.Kg(10), Unit: "kg", Warehouse: "A", Date: morning.AddDate(0, 0, -1)},
		{ID: "late", Family: ledger.FamilyRice, Type: "Nadu", Quantity: types.Kg(10), Unit: "kg", Warehouse: "A", Date: evening},
	}))

	entries, err := NewService(s).QueryReport(ctx, Query{Type: RiceStock})
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late", "older-day"}, ids(entries))
}

func TestAddStockSurfacesInReport(t *testing.T) {
	ctx := context.Background()
	b := staged.Wrap(memory.New())
	s := store.New(b, b)
	recorder, err := audit.NewRecorder(s)
	require.NoError(t, err)
	stocks := stock.NewService(s, ledger.DefaultCatalog(), recorder)

	q := types.Kg(1000)
	moisture := 13.5
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rec, err := stocks.AddStock(ctx, stock.AddInput{
		Family:        ledger.FamilyPaddy,
		Type:          "Nadu",
		Quantity:      &q,
		Warehouse:     "North",
		PricePerKg:    types.MustMoney("25"),
		MoistureLevel: &moisture,
		Supplier:      "Perera",
		Date:          &date,
	})
	require.NoError(t, err)

	entries, err := NewService(s).QueryReport(ctx, Query{
		Type: PaddyStock,
		From: ptr(date),
		To:   ptr(date),
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, rec.ID, e.ID)
	assert.Equal(t, rec.Date, e.Date)
	assert.Equal(t, rec.Type, e.ItemType)
	assert.Equal(t, rec.Quantity, e.Quantity)
	assert.Equal(t, rec.Unit, e.Unit)
	assert.Equal(t, rec.Warehouse, e.Warehouse)
	assert.Equal(t, rec.Status, e.Status)
	assert.Equal(t, rec.Supplier, e.Supplier)
	require.NotNil(t, e.PricePerKg)
	assert.True(t, rec.PricePerKg.Equal(*e.PricePerKg))
	require.NotNil(t, e.MoistureLevel)
	assert.Equal(t, moisture, *e.MoistureLevel)
}

func TestQueryReportInclusiveDateOnly(t *testing.T) {
	svc, _ := seed(t)

	// Rows at 10:00 on the bound day are included even though the bound is midnight.
	entries, err := svc.QueryReport(context.Background(), Query{
		Type: PaddyStock,
		From: ptr(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)),
		To:   ptr(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids(entries))
}

func TestQueryReportErrors(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	_, err := svc.QueryReport(ctx, Query{Type: "WHEAT_SALE"})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.QueryReport(ctx, Query{
		Type: RiceStock,
		From: ptr(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		To:   ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestQueryReportLowercaseType(t *testing.T) {
	svc, _ := seed(t)
	entries, err := svc.QueryReport(context.Background(), Query{Type: "rice_stock"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, RiceStock, entries[0].ReportType)
}

func TestSaleRowsResolveThroughStock(t *testing.T) {
	svc, _ := seed(t)

	entries, err := svc.QueryReport(context.Background(), Query{Type: PaddySale})
	require.NoError(t, err)

	byID := map[string]Entry{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	assert.Equal(t, "Nadu", byID["ps1"].ItemType)
	assert.Equal(t, "North", byID["ps1"].Warehouse)
	assert.Equal(t, "6000", byID["ps1"].TotalAmount.String())
	assert.Empty(t, byID["ps3"].ItemType, "deleted lot leaves type unresolved")
}

func TestFilters(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		typ     ReportType
		filters Filters
		want    []string
	}{
		{"warehouse on stock", PaddyStock, Filters{Warehouse: "north"}, []string{"p1"}},
		{"warehouse on sale via stock", PaddySale, Filters{Warehouse: "South"}, []string{"ps2"}},
		{"paddy type on threshing", PaddyThreshing, Filters{PaddyType: "Samba"}, []string{"t2"}},
		{"rice type on threshing", PaddyThreshing, Filters{RiceType: "Nadu"}, []string{"t1"}},
		{"rice type ignored on paddy stock", PaddyStock, Filters{RiceType: "Basmati"}, []string{"p2", "p1"}},
		{"supplier on paddy stock", PaddyStock, Filters{Supplier: "Perera"}, []string{"p1"}},
		{"customer on sale", PaddySale, Filters{Supplier: "Jaya Mills"}, []string{"ps2"}},
		{"customer on rice stock", RiceStock, Filters{Supplier: "Silva"}, []string{"r1"}},
		{"supplier ignored on threshing", PaddyThreshing, Filters{Supplier: "Perera"}, []string{"t2", "t1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := svc.QueryReport(ctx, Query{Type: tt.typ, Filters: tt.filters})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(entries))
		})
	}
}

func TestGenerateTotals(t *testing.T) {
	svc, _ := seed(t)

	report, err := svc.Generate(context.Background(), Query{Type: PaddySale})
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalItems)
	assert.Equal(t, types.Kg(215), report.TotalQuantity)
	require.NotNil(t, report.TotalAmount)
	assert.Equal(t, "6850", report.TotalAmount.String())
	assert.Equal(t, DefaultFrom, report.FromDate)

	stock, err := svc.Generate(context.Background(), Query{Type: RiceStock})
	require.NoError(t, err)
	assert.Nil(t, stock.TotalAmount)
}

func TestChartSeries(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	points, err := svc.ChartSeries(ctx, PaddyThreshing, nil, nil)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01", points[0].Key)
	assert.Equal(t, "Jan 24", points[0].Month)
	assert.Equal(t, types.Kg(100), points[0].Paddy)
	assert.Equal(t, types.Kg(60), points[0].Rice)
	assert.Equal(t, types.Kg(100), points[0].Quantity)
	assert.Equal(t, "Mar 24", points[1].Month)

	sales, err := svc.ChartSeries(ctx, PaddySale, nil, nil)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, types.Kg(205), sales[0].Paddy)
	assert.Equal(t, "6500", sales[0].TotalAmount.String())
	assert.True(t, sales[0].Rice.IsZero())
}

func TestDashboard(t *testing.T) {
	svc, _ := seed(t)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.Kg(300), d.TotalRiceStock)
	assert.Equal(t, types.Kg(1050), d.TotalPaddyStock)
	assert.Equal(t, "6850", d.TotalRevenue.String())
	assert.Equal(t, 2, d.TotalWarehouses)
	assert.Equal(t, types.Kg(25), d.BrokenRiceQuantity)
	assert.Equal(t, types.Kg(15), d.PolishRiceQuantity)

	require.Len(t, d.LowStockAlerts, 1)
	assert.Equal(t, "p2", d.LowStockAlerts[0].StockID)

	require.NotEmpty(t, d.RecentActivities)
	assert.Equal(t, "t2", d.RecentActivities[0].RecordID)
	assert.LessOrEqual(t, len(d.RecentActivities), RecentActivityLimit)
}

func TestWarehouseStats(t *testing.T) {
	svc, _ := seed(t)

	stats, err := svc.WarehouseStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	north := stats[0]
	assert.Equal(t, "North", north.Name)
	assert.Equal(t, types.Kg(1000), north.PaddyStock)
	assert.Equal(t, types.Kg(300), north.RiceStock)
	assert.Equal(t, types.Kg(1300), north.CurrentStock)
	assert.Equal(t, 2, north.Lots)
	assert.Equal(t, "61000", north.StockValue.String())

	assert.Equal(t, 1, stats[1].LowStockLots)
}

func TestLookups(t *testing.T) {
	svc, _ := seed(t)

	l, err := svc.Lookups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, l.Warehouses)
	assert.Equal(t, []string{"Nadu", "Samba"}, l.PaddyTypes)
	assert.Equal(t, []string{"Basmati", "Nadu", "Samba"}, l.RiceTypes)
	assert.Equal(t, []string{"Jaya Mills", "Silva", "Walk-in"}, l.Customers)
	assert.Equal(t, []string{"Fernando", "Perera"}, l.Suppliers)
}

func TestSystemData(t *testing.T) {
	svc, _ := seed(t)

	data, err := svc.SystemData(context.Background())
	require.NoError(t, err)
	assert.Len(t, data.PaddyStocks, 2)
	assert.Len(t, data.RiceStocks, 1)
	assert.Len(t, data.PaddySales, 3)
	assert.Empty(t, data.RiceSales)
	assert.Len(t, data.Threshings, 2)
}
