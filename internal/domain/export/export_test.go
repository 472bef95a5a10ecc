package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/reports"
	"ricemill/internal/domain/stock"
)

func day(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func qty(v float64) *types.Quantity {
	q := types.Kg(v)
	return &q
}

func saleReport() *reports.Report {
	return &reports.Report{
		ReportType: reports.PaddySale,
		FromDate:   day(1),
		ToDate:     day(31),
		Entries: []reports.Entry{
			{
				ID: "s1", ReportType: reports.PaddySale, Date: day(15), ItemType: "Nadu",
				Quantity: types.Kg(200), Warehouse: "North", Customer: "Silva",
				PricePerKg: money("30"), TotalAmount: money("6000"),
			},
		},
		TotalItems:    1,
		TotalQuantity: types.Kg(200),
		TotalAmount:   money("6000"),
	}
}

func riceStockReport() *reports.Report {
	return &reports.Report{
		ReportType: reports.RiceStock,
		FromDate:   day(1),
		ToDate:     day(31),
		Entries: []reports.Entry{
			{
				ID: "r1", ReportType: reports.RiceStock, Date: day(20), ItemType: "Basmati",
				Quantity: types.Kg(300), Unit: "kg", Warehouse: "North", Grade: "A",
				PricePerKg: money("120.5"), Status: ledger.StatusInStock,
			},
		},
		TotalItems:    1,
		TotalQuantity: types.Kg(300),
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, saleReport()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"Date", "Type", "Customer", "Phone", "Quantity", "Price/kg", "Total Amount", "Warehouse"}, rows[0])
	assert.Equal(t, []string{"2024-01-15", "Nadu", "Silva", "N/A", "200 kg", "Rs. 30.00", "Rs. 6000.00", "North"}, rows[1])
}

func TestWriteCSVThreshing(t *testing.T) {
	r := &reports.Report{
		ReportType: reports.PaddyThreshing,
		Entries: []reports.Entry{{
			Date: day(8), PaddyType: "Nadu", PaddyQuantity: qty(100),
			RiceType: "Nadu", RiceQuantity: qty(60), Warehouse: "North",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, r))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 11)
	assert.Equal(t, "100 kg", rows[1][2])
	assert.Equal(t, "60 kg", rows[1][4])
	assert.Equal(t, NotAvailable, rows[1][6])
	assert.Equal(t, NotAvailable, rows[1][10])
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	generated := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, WriteHTML(&buf, saleReport(), generated))

	out := buf.String()
	assert.Contains(t, out, "<title>Paddy Sales Report</title>")
	assert.Contains(t, out, "Period: 2024-01-01 to 2024-01-31")
	assert.Contains(t, out, "Generated: 2024-02-01 10:30")
	assert.Contains(t, out, "Total records: 1")
	assert.Contains(t, out, "<td>Silva</td>")
	assert.Contains(t, out, "<td>200 kg</td>")
	assert.Contains(t, out, "Rs. 6000.00")
}

func TestWriteHTMLEmpty(t *testing.T) {
	r := riceStockReport()
	r.Entries = nil
	r.TotalItems = 0
	r.TotalQuantity = 0

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r, day(31)))

	out := buf.String()
	assert.Contains(t, out, "No records for this period")
	assert.Contains(t, out, `colspan="9"`)
	assert.NotContains(t, out, "Total amount")
}

func TestWriteHTMLEscapes(t *testing.T) {
	r := saleReport()
	r.Entries[0].Customer = "<script>x</script>"

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r, day(31)))
	assert.NotContains(t, buf.String(), "<script>x</script>")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, saleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Report"}, f.GetSheetList())

	header, err := f.GetCellValue("Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	total, err := f.GetCellValue("Report", "G2")
	require.NoError(t, err)
	assert.Equal(t, "6000", total)
}

func TestXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, riceStockReport()))

	parsed, err := ParseStockRows(&buf, ledger.FamilyRice)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Empty(t, parsed.Failed)

	assert.Equal(t, 2, parsed.Rows[0].Row)
	in := parsed.Rows[0].Input
	assert.Equal(t, ledger.FamilyRice, in.Family)
	assert.Equal(t, "Basmati", in.Type)
	require.NotNil(t, in.Quantity)
	assert.Equal(t, types.Kg(300), *in.Quantity)
	assert.Equal(t, "North", in.Warehouse)
	assert.Equal(t, "A", in.Grade)
	assert.Empty(t, in.Customer)
	assert.True(t, in.PricePerKg.Equal(types.MustMoney("120.5")))
	require.NotNil(t, in.Date)
	assert.Equal(t, day(20), *in.Date)
}

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseStockRowsAliases(t *testing.T) {
	buf := workbook(t,
		[]any{"\uFEFFPaddy Type", "Quantity (kg)", "Warehouse", "Moisture %", "Price per kg", "Supplier"},
		[]any{"Nadu", "1,000", "North", "14.5%", "Rs. 25.50", "Perera"},
		[]any{"", "", "", "", "", ""},
		[]any{"Samba", "50 kg", "South", "", "", ""},
	)

	parsed, err := ParseStockRows(buf, ledger.FamilyPaddy)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
	assert.Empty(t, parsed.Failed)

	first := parsed.Rows[0].Input
	assert.Equal(t, "Nadu", first.Type)
	assert.Equal(t, types.Kg(1000), *first.Quantity)
	require.NotNil(t, first.MoistureLevel)
	assert.InDelta(t, 14.5, *first.MoistureLevel, 1e-9)
	assert.True(t, first.PricePerKg.Equal(types.MustMoney("25.5")))
	assert.Equal(t, "Perera", first.Supplier)

	assert.Equal(t, 4, parsed.Rows[1].Row)
	second := parsed.Rows[1].Input
	assert.Equal(t, types.Kg(50), *second.Quantity)
	assert.Nil(t, second.MoistureLevel)
	assert.True(t, second.PricePerKg.IsZero())
}

func TestParseStockRowsErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
		want string
	}{
		{
			name: "missing column",
			rows: [][]any{{"Type", "Quantity"}, {"Nadu", "10"}},
			want: "missing required column: warehouse",
		},
		{
			name: "header only",
			rows: [][]any{{"Type", "Quantity", "Warehouse"}},
			want: "no valid data rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStockRows(workbook(t, tt.rows...), ledger.FamilyPaddy)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseStockRowsKeepsGoodRows(t *testing.T) {
	buf := workbook(t,
		[]any{"Type", "Quantity", "Warehouse", "Price"},
		[]any{"Nadu", "lots", "North", ""},
		[]any{"Samba", "10", "North", "cheap"},
		[]any{"Keeri Samba", "20", "South", "90"},
	)

	parsed, err := ParseStockRows(buf, ledger.FamilyPaddy)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, 4, parsed.Rows[0].Row)
	assert.Equal(t, "Keeri Samba", parsed.Rows[0].Input.Type)

	require.Len(t, parsed.Failed, 2)
	assert.Equal(t, 2, parsed.Failed[0].Row)
	assert.Contains(t, parsed.Failed[0].Error, "invalid quantity")
	assert.Equal(t, 3, parsed.Failed[1].Row)
	assert.Contains(t, parsed.Failed[1].Error, "invalid price")
}

type fakeAdder struct {
	calls int
}

func (f *fakeAdder) AddStock(_ context.Context, in stock.AddInput) (ledger.StockRecord, error) {
	f.calls++
	if in.Type == "Unknown" {
		return ledger.StockRecord{}, errors.New("unknown paddy type")
	}
	return ledger.StockRecord{ID: in.Type, Family: in.Family, Type: in.Type, Quantity: *in.Quantity}, nil
}

func TestImportStocks(t *testing.T) {
	adder := &fakeAdder{}
	parsed := ParsedStock{Rows: []StockRow{
		{Row: 2, Input: stock.AddInput{Family: ledger.FamilyPaddy, Type: "Nadu", Quantity: qty(10)}},
		{Row: 3, Input: stock.AddInput{Family: ledger.FamilyPaddy, Type: "Unknown", Quantity: qty(5)}},
		{Row: 4, Input: stock.AddInput{Family: ledger.FamilyPaddy, Type: "Samba", Quantity: qty(7)}},
	}}

	res := ImportStocks(context.Background(), adder, parsed)

	assert.Equal(t, 3, adder.calls)
	require.Len(t, res.Created, 2)
	assert.Equal(t, "Samba", res.Created[1].Type)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 3, res.Failed[0].Row)
	assert.Contains(t, res.Failed[0].Error, "unknown paddy type")
}

func TestImportStocksReportsSheetRows(t *testing.T) {
	buf := workbook(t,
		[]any{"Type", "Quantity", "Warehouse"},
		[]any{"Nadu", "10", "North"},
		[]any{"", "", ""},
		[]any{"", "", ""},
		[]any{"Unknown", "5", "North"},
		[]any{"Samba", "many", "North"},
	)

	parsed, err := ParseStockRows(buf, ledger.FamilyPaddy)
	require.NoError(t, err)

	adder := &fakeAdder{}
	res := ImportStocks(context.Background(), adder, parsed)

	assert.Equal(t, 2, adder.calls)
	require.Len(t, res.Created, 1)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, RowError{Row: 5, Error: "unknown paddy type"}, res.Failed[0])
	assert.Equal(t, 6, res.Failed[1].Row)
	assert.Contains(t, res.Failed[1].Error, "invalid quantity")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "rice_sale_report_2024-01-31.csv", FileName(reports.RiceSale, "csv", day(31)))
}
