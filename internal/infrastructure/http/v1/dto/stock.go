package dto

import (
	"ricemill/internal/core/types"
	"ricemill/internal/domain/export"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/stock"
)

// CreateStockRequest represents a new rice or paddy lot.
type CreateStockRequest struct {
	Family        string          `json:"family"`
	Type          string          `json:"type"`
	Quantity      *types.Quantity `json:"quantity"`
	Unit          string          `json:"unit"`
	Warehouse     string          `json:"warehouse"`
	PricePerKg    types.Money     `json:"pricePerKg"`
	MoistureLevel *float64        `json:"moistureLevel"`
	Supplier      string          `json:"supplier"`
	Customer      string          `json:"customer"`
	Grade         string          `json:"grade"`
	Date          string          `json:"date"`
}

// ToInput converts the request to a stock ledger input.
func (r CreateStockRequest) ToInput() (stock.AddInput, error) {
	family, err := ledger.ParseFamily(r.Family)
	if err != nil {
		return stock.AddInput{}, err
	}
	date, err := parseDate("date", r.Date)
	if err != nil {
		return stock.AddInput{}, err
	}
	return stock.AddInput{
		Family:        family,
		Type:          r.Type,
		Quantity:      r.Quantity,
		Unit:          r.Unit,
		Warehouse:     r.Warehouse,
		PricePerKg:    r.PricePerKg,
		MoistureLevel: r.MoistureLevel,
		Supplier:      r.Supplier,
		Customer:      r.Customer,
		Grade:         r.Grade,
		Date:          date,
	}, nil
}

// UpdateStockRequest overwrites the fields that are present. A non-empty
// comment is kept in the audit log.
type UpdateStockRequest struct {
	Type          *string         `json:"type"`
	Quantity      *types.Quantity `json:"quantity"`
	Unit          *string         `json:"unit"`
	Warehouse     *string         `json:"warehouse"`
	PricePerKg    *types.Money    `json:"pricePerKg"`
	MoistureLevel *float64        `json:"moistureLevel"`
	Supplier      *string         `json:"supplier"`
	Customer      *string         `json:"customer"`
	Grade         *string         `json:"grade"`
	Date          *string         `json:"date"`
	Comment       string          `json:"comment"`
}

// ToPatch converts the request to a stock patch.
func (r UpdateStockRequest) ToPatch() (stock.Patch, error) {
	p := stock.Patch{
		Type:          r.Type,
		Quantity:      r.Quantity,
		Unit:          r.Unit,
		Warehouse:     r.Warehouse,
		PricePerKg:    r.PricePerKg,
		MoistureLevel: r.MoistureLevel,
		Supplier:      r.Supplier,
		Customer:      r.Customer,
		Grade:         r.Grade,
	}
	if r.Date != nil {
		date, err := parseDate("date", *r.Date)
		if err != nil {
			return stock.Patch{}, err
		}
		p.Date = date
	}
	return p, nil
}

// StockListRequest filters the lot list.
type StockListRequest struct {
	Family string `form:"family"`
}

// ImportResponse reports a spreadsheet import.
type ImportResponse struct {
	Created    int                  `json:"created"`
	Failed     int                  `json:"failed"`
	Items      []ledger.StockRecord `json:"items"`
	FailedRows []export.RowError    `json:"failedRows"`
}

// FromImportResult converts an import result.
func FromImportResult(r export.ImportResult) ImportResponse {
	return ImportResponse{
		Created:    len(r.Created),
		Failed:     len(r.Failed),
		Items:      r.Created,
		FailedRows: r.Failed,
	}
}
