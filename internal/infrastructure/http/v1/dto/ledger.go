package dto

import (
	"encoding/json"
	"time"

	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/sales"
	"ricemill/internal/domain/threshing"
)

// --- Sales ---

// SaleRequest records a sale from a stock lot.
type SaleRequest struct {
	StockID       string         `json:"stockId"`
	Quantity      types.Quantity `json:"quantity"`
	PricePerKg    *types.Money   `json:"pricePerKg"`
	CustomerName  string         `json:"customerName"`
	CustomerPhone string         `json:"customerPhone"`
	SaleDate      string         `json:"saleDate"`
}

// ToInput converts the request to a sales input.
func (r SaleRequest) ToInput() (sales.Input, error) {
	date, err := parseDate("saleDate", r.SaleDate)
	if err != nil {
		return sales.Input{}, err
	}
	return sales.Input{
		StockID:       r.StockID,
		Quantity:      r.Quantity,
		PricePerKg:    r.PricePerKg,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		SaleDate:      date,
	}, nil
}

// SaleListRequest filters the sale list.
type SaleListRequest struct {
	Family string `form:"family"`
}

// --- Threshing ---

// ThreshingRequest records one threshing run.
type ThreshingRequest struct {
	PaddyStockID       string         `json:"paddyStockId"`
	PaddyType          string         `json:"paddyType"`
	PaddyQuantity      types.Quantity `json:"paddyQuantity"`
	RiceType           string         `json:"riceType"`
	RiceGrade          string         `json:"riceGrade"`
	RiceQuantity       types.Quantity `json:"riceQuantity"`
	BrokenRiceType     string         `json:"brokenRiceType"`
	BrokenRiceQuantity types.Quantity `json:"brokenRiceQuantity"`
	PolishRiceType     string         `json:"polishRiceType"`
	PolishRiceQuantity types.Quantity `json:"polishRiceQuantity"`
	Warehouse          string         `json:"warehouse"`
	Date               string         `json:"date"`
	Notes              string         `json:"notes"`
}

// ToInput converts the request to a threshing input.
func (r ThreshingRequest) ToInput() (threshing.Input, error) {
	date, err := parseDate("date", r.Date)
	if err != nil {
		return threshing.Input{}, err
	}
	return threshing.Input{
		PaddyStockID:       r.PaddyStockID,
		PaddyType:          r.PaddyType,
		PaddyQuantity:      r.PaddyQuantity,
		RiceType:           r.RiceType,
		RiceGrade:          r.RiceGrade,
		RiceQuantity:       r.RiceQuantity,
		BrokenRiceType:     r.BrokenRiceType,
		BrokenRiceQuantity: r.BrokenRiceQuantity,
		PolishRiceType:     r.PolishRiceType,
		PolishRiceQuantity: r.PolishRiceQuantity,
		Warehouse:          r.Warehouse,
		Date:               date,
		Notes:              r.Notes,
	}, nil
}

// --- Audit ---

// AuditListRequest filters the audit log.
type AuditListRequest struct {
	Collection string `form:"collection"`
	RecordID   string `form:"recordId"`
	Action     string `form:"action"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// AuditEntryResponse is an audit entry with its snapshot decoded.
type AuditEntryResponse struct {
	ID         string                        `json:"id"`
	Action     ledger.AuditAction            `json:"action"`
	Collection string                        `json:"collection"`
	RecordID   string                        `json:"recordId"`
	Comment    string                        `json:"comment,omitempty"`
	At         time.Time                     `json:"at"`
	Changes    map[string]ledger.FieldChange `json:"changes,omitempty"`
	Snapshot   json.RawMessage               `json:"snapshot,omitempty"`
}
