// Package reports provides report generation over the ledger collections.
package reports

import (
	"fmt"
	"strings"
	"time"

	"ricemill/internal/core/apperror"
	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
)

// ReportType selects which collection a report reads.
type ReportType string

const (
	PaddyThreshing ReportType = "PADDY_THRESHING"
	PaddySale      ReportType = "PADDY_SALE"
	PaddyStock     ReportType = "PADDY_STOCK"
	RiceSale       ReportType = "RICE_SALE"
	RiceStock      ReportType = "RICE_STOCK"
)

// ReportTypes lists every supported report type.
func ReportTypes() []ReportType {
	return []ReportType{PaddyThreshing, PaddySale, PaddyStock, RiceSale, RiceStock}
}

// ParseReportType accepts a report type in any case.
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range ReportTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", apperror.NewFieldValidation("reportType", fmt.Sprintf("unknown report type %q", s)).
		WithDetail("allowed", ReportTypes())
}

// Family is the stock family a report is about. Threshing reports paddy.
func (t ReportType) Family() ledger.Family {
	if t == RiceSale || t == RiceStock {
		return ledger.FamilyRice
	}
	return ledger.FamilyPaddy
}

func (t ReportType) IsSale() bool      { return t == PaddySale || t == RiceSale }
func (t ReportType) IsStock() bool     { return t == PaddyStock || t == RiceStock }
func (t ReportType) IsThreshing() bool { return t == PaddyThreshing }

// Default report range when no bounds are given.
var (
	DefaultFrom = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	DefaultTo   = time.Date(2100, 12, 31, 0, 0, 0, 0, time.UTC)
)

// Filters are equality filters. Empty fields match everything; a field is
// ignored by report types whose rows do not carry it.
type Filters struct {
	Warehouse string `json:"warehouse,omitempty"`
	PaddyType string `json:"paddyType,omitempty"`
	RiceType  string `json:"riceType,omitempty"`
	// Supplier matches the supplier of paddy lots or the customer of rice
	// lots and sales.
	Supplier string `json:"supplier,omitempty"`
}

// Query defines a report request.
type Query struct {
	Type    ReportType
	From    *time.Time
	To      *time.Time
	Filters Filters
}

// Entry is one report row. Which optional fields are set depends on the
// report type.
type Entry struct {
	ID         string         `json:"id"`
	ReportType ReportType     `json:"reportType"`
	Date       time.Time      `json:"date"`
	ItemType   string         `json:"itemType,omitempty"`
	Quantity   types.Quantity `json:"quantity"`
	Unit       string         `json:"unit,omitempty"`
	Warehouse  string         `json:"warehouse,omitempty"`
	PricePerKg *types.Money   `json:"pricePerKg,omitempty"`

	// Stock rows
	Status        ledger.Status `json:"status,omitempty"`
	Grade         string        `json:"grade,omitempty"`
	MoistureLevel *float64      `json:"moistureLevel,omitempty"`
	Supplier      string        `json:"supplier,omitempty"`
	Customer      string        `json:"customer,omitempty"`

	// Sale rows
	StockID       string       `json:"stockId,omitempty"`
	CustomerPhone string       `json:"customerPhone,omitempty"`
	TotalAmount   *types.Money `json:"totalAmount,omitempty"`

	// Threshing rows
	PaddyType          string          `json:"paddyType,omitempty"`
	PaddyQuantity      *types.Quantity `json:"paddyQuantity,omitempty"`
	RiceType           string          `json:"riceType,omitempty"`
	RiceQuantity       *types.Quantity `json:"riceQuantity,omitempty"`
	BrokenRiceType     string          `json:"brokenRiceType,omitempty"`
	BrokenRiceQuantity *types.Quantity `json:"brokenRiceQuantity,omitempty"`
	PolishRiceType     string          `json:"polishRiceType,omitempty"`
	PolishRiceQuantity *types.Quantity `json:"polishRiceQuantity,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// Report is a generated report with its summary totals.
type Report struct {
	ReportType ReportType `json:"reportType"`
	FromDate   time.Time  `json:"fromDate"`
	ToDate     time.Time  `json:"toDate"`
	Filters    Filters    `json:"filters"`
	Entries    []Entry    `json:"entries"`
	TotalItems int        `json:"totalItems"`

	// Summary
	TotalQuantity types.Quantity `json:"totalQuantity"`
	TotalAmount   *types.Money   `json:"totalAmount,omitempty"`
}

// ChartPoint aggregates one calendar month of a report.
type ChartPoint struct {
	Key         string         `json:"key"`   // 2024-01
	Month       string         `json:"month"` // Jan 24
	Rice        types.Quantity `json:"rice"`
	Paddy       types.Quantity `json:"paddy"`
	Quantity    types.Quantity `json:"quantity"`
	TotalAmount types.Money    `json:"totalAmount"`
}

// --- Dashboard ---

// LowStockAlert is a lot that is Low Stock or Out of Stock.
type LowStockAlert struct {
	StockID   string         `json:"stockId"`
	Family    ledger.Family  `json:"family"`
	Type      string         `json:"type"`
	Warehouse string         `json:"warehouse"`
	Quantity  types.Quantity `json:"quantity"`
	Status    ledger.Status  `json:"status"`
}

// Activity is one line of the recent activity feed.
type Activity struct {
	Kind        string    `json:"kind"` // stock, sale, threshing
	RecordID    string    `json:"recordId"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// Dashboard summarizes the whole ledger.
type Dashboard struct {
	TotalRiceStock     types.Quantity  `json:"totalRiceStock"`
	TotalPaddyStock    types.Quantity  `json:"totalPaddyStock"`
	TotalRevenue       types.Money     `json:"totalRevenue"`
	TotalWarehouses    int             `json:"totalWarehouses"`
	BrokenRiceQuantity types.Quantity  `json:"brokenRiceQuantity"`
	PolishRiceQuantity types.Quantity  `json:"polishRiceQuantity"`
	LowStockAlerts     []LowStockAlert `json:"lowStockAlerts"`
	RecentActivities   []Activity      `json:"recentActivities"`
}

// WarehouseStat is the stock held in one warehouse.
type WarehouseStat struct {
	Name         string         `json:"name"`
	RiceStock    types.Quantity `json:"riceStock"`
	PaddyStock   types.Quantity `json:"paddyStock"`
	CurrentStock types.Quantity `json:"currentStock"`
	Lots         int            `json:"lots"`
	LowStockLots int            `json:"lowStockLots"`
	StockValue   types.Money    `json:"stockValue"`
}

// Lookups are the distinct values offered by report filters.
type Lookups struct {
	Warehouses []string `json:"warehouses"`
	PaddyTypes []string `json:"paddyTypes"`
	RiceTypes  []string `json:"riceTypes"`
	Customers  []string `json:"customers"`
	Suppliers  []string `json:"suppliers"`
}

// SystemData is every collection at once.
type SystemData struct {
	RiceStocks  []ledger.StockRecord     `json:"riceStocks"`
	PaddyStocks []ledger.StockRecord     `json:"paddyStocks"`
	RiceSales   []ledger.SaleRecord      `json:"riceSales"`
	PaddySales  []ledger.SaleRecord      `json:"paddySales"`
	Threshings  []ledger.ThreshingRecord `json:"threshingRecords"`
}
