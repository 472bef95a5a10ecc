// Package export renders reports as CSV, printable HTML and XLSX, and
// reads stock lots back from XLSX sheets.
package export

import (
	"strconv"
	"strings"
	"time"

	"ricemill/internal/core/types"
	"ricemill/internal/domain/reports"
)

// NotAvailable fills cells whose field is missing.
const NotAvailable = "N/A"

// Column is one exported column. Text renders the cell for CSV and HTML;
// Value is the typed cell for spreadsheets.
type Column struct {
	Header string
	Text   func(e reports.Entry) string
	Value  func(e reports.Entry) any
}

func textColumn(header string, get func(e reports.Entry) string) Column {
	return Column{
		Header: header,
		Text:   func(e reports.Entry) string { return orNA(get(e)) },
		Value:  func(e reports.Entry) any { return orNA(get(e)) },
	}
}

func dateColumn() Column {
	return Column{
		Header: "Date",
		Text:   func(e reports.Entry) string { return formatDate(e.Date) },
		Value:  func(e reports.Entry) any { return formatDate(e.Date) },
	}
}

func quantityColumn(header string, get func(e reports.Entry) *types.Quantity) Column {
	return Column{
		Header: header,
		Text: func(e reports.Entry) string {
			if q := get(e); q != nil {
				return q.Display()
			}
			return NotAvailable
		},
		Value: func(e reports.Entry) any {
			if q := get(e); q != nil {
				return q.Float64()
			}
			return NotAvailable
		},
	}
}

func moneyColumn(header string, get func(e reports.Entry) *types.Money) Column {
	return Column{
		Header: header,
		Text: func(e reports.Entry) string {
			if m := get(e); m != nil {
				return types.FormatRupees(*m)
			}
			return NotAvailable
		},
		Value: func(e reports.Entry) any {
			if m := get(e); m != nil {
				return m.InexactFloat64()
			}
			return NotAvailable
		},
	}
}

func quantity(e reports.Entry) *types.Quantity { return &e.Quantity }

// Columns returns the export layout of a report type.
func Columns(t reports.ReportType) []Column {
	switch t {
	case reports.RiceStock:
		return []Column{
			dateColumn(),
			textColumn("Rice Type", func(e reports.Entry) string { return e.ItemType }),
			quantityColumn("Quantity", quantity),
			textColumn("Unit", func(e reports.Entry) string { return e.Unit }),
			textColumn("Warehouse", func(e reports.Entry) string { return e.Warehouse }),
			textColumn("Grade", func(e reports.Entry) string { return e.Grade }),
			textColumn("Customer", func(e reports.Entry) string { return e.Customer }),
			moneyColumn("Price/kg", func(e reports.Entry) *types.Money { return e.PricePerKg }),
			textColumn("Status", func(e reports.Entry) string { return string(e.Status) }),
		}
	case reports.PaddyStock:
		return []Column{
			dateColumn(),
			textColumn("Paddy Type", func(e reports.Entry) string { return e.ItemType }),
			quantityColumn("Quantity", quantity),
			textColumn("Unit", func(e reports.Entry) string { return e.Unit }),
			textColumn("Warehouse", func(e reports.Entry) string { return e.Warehouse }),
			textColumn("Moisture %", func(e reports.Entry) string { return formatPercent(e.MoistureLevel) }),
			textColumn("Supplier", func(e reports.Entry) string { return e.Supplier }),
			moneyColumn("Price/kg", func(e reports.Entry) *types.Money { return e.PricePerKg }),
			textColumn("Status", func(e reports.Entry) string { return string(e.Status) }),
		}
	case reports.RiceSale, reports.PaddySale:
		return []Column{
			dateColumn(),
			textColumn("Type", func(e reports.Entry) string { return e.ItemType }),
			textColumn("Customer", func(e reports.Entry) string { return e.Customer }),
			textColumn("Phone", func(e reports.Entry) string { return e.CustomerPhone }),
			quantityColumn("Quantity", quantity),
			moneyColumn("Price/kg", func(e reports.Entry) *types.Money { return e.PricePerKg }),
			moneyColumn("Total Amount", func(e reports.Entry) *types.Money { return e.TotalAmount }),
			textColumn("Warehouse", func(e reports.Entry) string { return e.Warehouse }),
		}
	default:
		return []Column{
			dateColumn(),
			textColumn("Paddy Type", func(e reports.Entry) string { return e.PaddyType }),
			quantityColumn("Paddy Quantity", func(e reports.Entry) *types.Quantity { return e.PaddyQuantity }),
			textColumn("Rice Type", func(e reports.Entry) string { return e.RiceType }),
			quantityColumn("Rice Quantity", func(e reports.Entry) *types.Quantity { return e.RiceQuantity }),
			textColumn("Broken Rice Type", func(e reports.Entry) string { return e.BrokenRiceType }),
			quantityColumn("Broken Rice Quantity", func(e reports.Entry) *types.Quantity { return e.BrokenRiceQuantity }),
			textColumn("Polish Rice Type", func(e reports.Entry) string { return e.PolishRiceType }),
			quantityColumn("Polish Rice Quantity", func(e reports.Entry) *types.Quantity { return e.PolishRiceQuantity }),
			textColumn("Warehouse", func(e reports.Entry) string { return e.Warehouse }),
			textColumn("Notes", func(e reports.Entry) string { return e.Notes }),
		}
	}
}

// Title is the document heading of a report type.
func Title(t reports.ReportType) string {
	switch t {
	case reports.PaddyThreshing:
		return "Paddy Threshing Report"
	case reports.PaddySale:
		return "Paddy Sales Report"
	case reports.PaddyStock:
		return "Paddy Stock Report"
	case reports.RiceSale:
		return "Rice Sales Report"
	case reports.RiceStock:
		return "Rice Stock Report"
	}
	return "Report"
}

// Table is a report laid out as text cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// BuildTable renders every entry of the report.
func BuildTable(r *reports.Report) Table {
	cols := Columns(r.ReportType)
	t := Table{
		Title:   Title(r.ReportType),
		Headers: make([]string, len(cols)),
		Rows:    make([][]string, 0, len(r.Entries)),
	}
	for i, c := range cols {
		t.Headers[i] = c.Header
	}
	for _, e := range r.Entries {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Text(e)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// FileName suggests a download name such as rice_sale_report_2024-01-31.csv.
func FileName(t reports.ReportType, ext string, now time.Time) string {
	return strings.ToLower(string(t)) + "_report_" + now.Format(time.DateOnly) + "." + ext
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.UTC().Format(time.DateOnly)
}

func formatPercent(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + "%"
}
