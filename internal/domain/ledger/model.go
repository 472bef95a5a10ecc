// Package ledger holds the record types shared by the stock, sales,
// threshing and reporting services.
package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ricemill/internal/core/apperror"
	"ricemill/internal/core/types"
)

// Family separates rice stock from paddy stock.
type Family string

const (
	FamilyRice  Family = "rice"
	FamilyPaddy Family = "paddy"
)

// ParseFamily accepts "rice" or "paddy" in any case.
func ParseFamily(s string) (Family, error) {
	switch Family(strings.ToLower(strings.TrimSpace(s))) {
	case FamilyRice:
		return FamilyRice, nil
	case FamilyPaddy:
		return FamilyPaddy, nil
	}
	return "", apperror.NewFieldValidation("family", fmt.Sprintf("unknown stock family %q, expected rice or paddy", s))
}

// Families lists both families in storage order.
func Families() []Family {
	return []Family{FamilyRice, FamilyPaddy}
}

// DefaultUnit is the unit recorded when none is given.
const DefaultUnit = "kg"

// StockRecord is one stock lot of rice or paddy in a warehouse.
// Paddy lots carry MoistureLevel and Supplier; rice lots carry Customer and Grade.
type StockRecord struct {
	ID         string         `json:"id"`
	Family     Family         `json:"family"`
	Type       string         `json:"type"`
	Quantity   types.Quantity `json:"quantity"`
	Unit       string         `json:"unit"`
	Warehouse  string         `json:"warehouse"`
	PricePerKg types.Money    `json:"pricePerKg"`
	Status     Status         `json:"status"`

	MoistureLevel *float64 `json:"moistureLevel,omitempty"`
	Supplier      string   `json:"supplier,omitempty"`

	Customer string `json:"customer,omitempty"`
	Grade    string `json:"grade,omitempty"`

	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Touch re-derives status from quantity and stamps lastUpdated.
func (r *StockRecord) Touch(now time.Time) {
	r.Quantity = r.Quantity.ClampZero()
	r.Status = DeriveStatus(r.Quantity)
	r.LastUpdated = now
}

// Validate checks the record against the variety catalog.
func (r *StockRecord) Validate(cat Catalog) error {
	if _, err := ParseFamily(string(r.Family)); err != nil {
		return err
	}
	if strings.TrimSpace(r.Type) == "" {
		return apperror.NewFieldValidation("type", fmt.Sprintf("%s type is required", r.Family))
	}
	canonical, ok := cat.CanonicalType(r.Family, r.Type)
	if !ok {
		return apperror.NewFieldValidation("type", fmt.Sprintf("unknown %s type %q", r.Family, r.Type)).
			WithDetail("allowed", cat.Types(r.Family))
	}
	r.Type = canonical

	if strings.TrimSpace(r.Warehouse) == "" {
		return apperror.NewFieldValidation("warehouse", "warehouse is required")
	}
	r.Warehouse = strings.TrimSpace(r.Warehouse)

	if r.Quantity.IsNegative() {
		return apperror.NewFieldValidation("quantity", "quantity cannot be negative")
	}
	if r.PricePerKg.IsNegative() {
		return apperror.NewFieldValidation("pricePerKg", "price per kg cannot be negative")
	}

	if r.Unit == "" {
		r.Unit = DefaultUnit
	}
	if !cat.HasUnit(r.Unit) {
		return apperror.NewFieldValidation("unit", fmt.Sprintf("unknown unit %q", r.Unit)).
			WithDetail("allowed", cat.Units)
	}

	if r.MoistureLevel != nil && (*r.MoistureLevel < 0 || *r.MoistureLevel > 100) {
		return apperror.NewFieldValidation("moistureLevel", "moisture level must be between 0 and 100")
	}
	if r.Grade != "" && !cat.HasGrade(r.Grade) {
		return apperror.NewFieldValidation("grade", fmt.Sprintf("unknown grade %q", r.Grade)).
			WithDetail("allowed", cat.Grades)
	}
	return nil
}

// Counterparty is the supplier of a paddy lot or the customer of a rice lot.
func (r StockRecord) Counterparty() string {
	if r.Family == FamilyPaddy {
		return r.Supplier
	}
	return r.Customer
}

// WalkInCustomer is recorded for sales without a customer name.
const WalkInCustomer = "Walk-in"

// SaleRecord is an immutable sale drawn from one stock lot.
type SaleRecord struct {
	ID            string         `json:"id"`
	Family        Family         `json:"family"`
	StockID       string         `json:"stockId"`
	CustomerName  string         `json:"customerName"`
	CustomerPhone string         `json:"customerPhone,omitempty"`
	Quantity      types.Quantity `json:"quantity"`
	PricePerKg    types.Money    `json:"pricePerKg"`
	SaleDate      time.Time      `json:"saleDate"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// TotalAmount is quantity × pricePerKg.
func (s SaleRecord) TotalAmount() types.Money {
	return types.Amount(s.Quantity, s.PricePerKg)
}

// MarshalJSON adds the computed totalAmount.
func (s SaleRecord) MarshalJSON() ([]byte, error) {
	type plain SaleRecord
	return json.Marshal(struct {
		plain
		TotalAmount types.Money `json:"totalAmount"`
	}{plain(s), s.TotalAmount()})
}

// ThreshingRecord is one conversion of paddy into rice, broken rice and polish.
type ThreshingRecord struct {
	ID                 string         `json:"id"`
	PaddyStockID       string         `json:"paddyStockId,omitempty"`
	PaddyType          string         `json:"paddyType"`
	PaddyQuantity      types.Quantity `json:"paddyQuantity"`
	RiceType           string         `json:"riceType"`
	RiceGrade          string         `json:"riceGrade,omitempty"`
	RiceQuantity       types.Quantity `json:"riceQuantity"`
	BrokenRiceType     string         `json:"brokenRiceType,omitempty"`
	BrokenRiceQuantity types.Quantity `json:"brokenRiceQuantity"`
	PolishRiceType     string         `json:"polishRiceType,omitempty"`
	PolishRiceQuantity types.Quantity `json:"polishRiceQuantity"`
	Warehouse          string         `json:"warehouse,omitempty"`
	Date               time.Time      `json:"date"`
	Notes              string         `json:"notes,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// OutputTotal is rice + broken + polish.
func (t ThreshingRecord) OutputTotal() types.Quantity {
	return types.Sum(t.RiceQuantity, t.BrokenRiceQuantity, t.PolishRiceQuantity)
}

// Husk is the input mass not accounted for by any output.
func (t ThreshingRecord) Husk() types.Quantity {
	return (t.PaddyQuantity - t.OutputTotal()).ClampZero()
}

// CheckMassBalance fails when outputs exceed the paddy input. The sum is
// exact, so no combination of outputs can wrap below the input.
func (t ThreshingRecord) CheckMassBalance() error {
	total := types.SumDecimal(t.RiceQuantity, t.BrokenRiceQuantity, t.PolishRiceQuantity)
	paddy := t.PaddyQuantity.Decimal()
	if total.GreaterThan(paddy) {
		return apperror.NewMassBalance(total.InexactFloat64(), paddy.InexactFloat64())
	}
	return nil
}

// DeleteRequest gates every destructive operation.
type DeleteRequest struct {
	Reason    string `json:"reason"`
	Confirmed bool   `json:"confirmed"`
}

// Validate requires a reason and an explicit confirmation.
func (d DeleteRequest) Validate() error {
	if strings.TrimSpace(d.Reason) == "" {
		return apperror.NewFieldValidation("reason", "a reason is required to delete a record")
	}
	if !d.Confirmed {
		return apperror.NewFieldValidation("confirmed", "deletion must be confirmed")
	}
	return nil
}

// AuditAction names an audited change.
type AuditAction string

const (
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditEntry records an edit comment or a deletion reason with a snapshot
// of the record before the change.
type AuditEntry struct {
	ID         string      `json:"id"`
	Action     AuditAction `json:"action"`
	Collection string      `json:"collection"`
	RecordID   string      `json:"recordId"`
	Comment    string      `json:"comment"`
	At         time.Time   `json:"at"`

	// Changes maps each edited field to its old and new value.
	Changes  map[string]FieldChange `json:"changes,omitempty"`
	Snapshot []byte                 `json:"snapshot,omitempty"` // zstd-compressed JSON
}

// FieldChange is one edited field of an audited update.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}
