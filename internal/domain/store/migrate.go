package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
)

// Older writers used different field names for the same data:
// riceType/paddyType instead of type, PaddyQuantity with a capital P,
// totalPrice or totalAmount without pricePerKg, numeric ids, and dates
// stored as lastUpdated, plain YYYY-MM-DD or epoch milliseconds.
// Everything below folds those shapes into the canonical records.

// flexID accepts a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// flexTime accepts RFC 3339, a bare date, a zone-less timestamp or epoch millis.
type flexTime time.Time

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = flexTime{}
		return nil
	}
	if data[0] != '"' {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		*f = flexTime(time.UnixMilli(ms).UTC())
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := ParseTime(s)
	if err != nil {
		return err
	}
	*f = flexTime(t)
	return nil
}

// ParseTime parses any of the timestamp forms found in stored records.
// An empty string yields the zero time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// flexFloat accepts a JSON number or numeric string.
type flexFloat struct {
	v   float64
	set bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if s == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("number: %w", err)
	}
	f.v, f.set = v, true
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.v
	return &v
}

func firstTime(ts ...flexTime) time.Time {
	for _, t := range ts {
		if !time.Time(t).IsZero() {
			return time.Time(t)
		}
	}
	return time.Time{}
}

func firstString(ss ...string) string {
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func moneyOrZero(m *types.Money) types.Money {
	if m == nil {
		return types.Zero()
	}
	return *m
}

type storedStock struct {
	ID            flexID         `json:"id"`
	Type          string         `json:"type"`
	RiceType      string         `json:"riceType"`
	PaddyType     string         `json:"paddyType"`
	Quantity      types.Quantity `json:"quantity"`
	Unit          string         `json:"unit"`
	Warehouse     string         `json:"warehouse"`
	PricePerKg    *types.Money   `json:"pricePerKg"`
	MoistureLevel flexFloat      `json:"moistureLevel"`
	Supplier      string         `json:"supplier"`
	Customer      string         `json:"customer"`
	CustomerName  string         `json:"customerName"`
	Grade         string         `json:"grade"`
	Date          flexTime       `json:"date"`
	CreatedAt     flexTime       `json:"createdAt"`
	LastUpdated   flexTime       `json:"lastUpdated"`
}

func decodeStock(raw json.RawMessage, f ledger.Family) (ledger.StockRecord, error) {
	var s storedStock
	if err := json.Unmarshal(raw, &s); err != nil {
		return ledger.StockRecord{}, err
	}

	legacyType := s.RiceType
	if f == ledger.FamilyPaddy {
		legacyType = s.PaddyType
	}

	rec := ledger.StockRecord{
		ID:            string(s.ID),
		Family:        f,
		Type:          firstString(s.Type, legacyType),
		Quantity:      s.Quantity.ClampZero(),
		Unit:          firstString(s.Unit, ledger.DefaultUnit),
		Warehouse:     strings.TrimSpace(s.Warehouse),
		PricePerKg:    moneyOrZero(s.PricePerKg),
		MoistureLevel: s.MoistureLevel.ptr(),
		Supplier:      strings.TrimSpace(s.Supplier),
		Customer:      firstString(s.Customer, s.CustomerName),
		Grade:         strings.TrimSpace(s.Grade),
		Date:          firstTime(s.Date, s.CreatedAt, s.LastUpdated),
		CreatedAt:     firstTime(s.CreatedAt, s.Date, s.LastUpdated),
		LastUpdated:   firstTime(s.LastUpdated, s.CreatedAt, s.Date),
	}
	rec.Status = ledger.DeriveStatus(rec.Quantity)
	return rec, nil
}

type storedSale struct {
	ID            flexID         `json:"id"`
	StockID       flexID         `json:"stockId"`
	CustomerName  string         `json:"customerName"`
	Customer      string         `json:"customer"`
	CustomerPhone string         `json:"customerPhone"`
	Phone         string         `json:"phone"`
	Quantity      types.Quantity `json:"quantity"`
	PricePerKg    *types.Money   `json:"pricePerKg"`
	TotalAmount   *types.Money   `json:"totalAmount"`
	TotalPrice    *types.Money   `json:"totalPrice"`
	SaleDate      flexTime       `json:"saleDate"`
	Date          flexTime       `json:"date"`
	CreatedAt     flexTime       `json:"createdAt"`
}

func decodeSale(raw json.RawMessage, f ledger.Family) (ledger.SaleRecord, error) {
	var s storedSale
	if err := json.Unmarshal(raw, &s); err != nil {
		return ledger.SaleRecord{}, err
	}

	price := moneyOrZero(s.PricePerKg)
	if s.PricePerKg == nil {
		// totalAmount is never trusted as an independent value; it only
		// recovers the unit price for rows written without one.
		switch {
		case s.TotalAmount != nil:
			price = types.PricePerKg(*s.TotalAmount, s.Quantity)
		case s.TotalPrice != nil:
			price = types.PricePerKg(*s.TotalPrice, s.Quantity)
		}
	}

	return ledger.SaleRecord{
		ID:            string(s.ID),
		Family:        f,
		StockID:       string(s.StockID),
		CustomerName:  firstString(s.CustomerName, s.Customer, ledger.WalkInCustomer),
		CustomerPhone: firstString(s.CustomerPhone, s.Phone),
		Quantity:      s.Quantity,
		PricePerKg:    price,
		SaleDate:      firstTime(s.SaleDate, s.Date, s.CreatedAt),
		CreatedAt:     firstTime(s.CreatedAt, s.SaleDate, s.Date),
	}, nil
}

type storedThreshing struct {
	ID                 flexID         `json:"id"`
	PaddyStockID       flexID         `json:"paddyStockId"`
	PaddyType          string         `json:"paddyType"`
	RiceType           string         `json:"riceType"`
	RiceGrade          string         `json:"riceGrade"`
	RiceQuantity       types.Quantity `json:"riceQuantity"`
	BrokenRiceType     string         `json:"brokenRiceType"`
	BrokenRiceQuantity types.Quantity `json:"brokenRiceQuantity"`
	PolishRiceType     string         `json:"polishRiceType"`
	PolishRiceQuantity types.Quantity `json:"polishRiceQuantity"`
	Warehouse          string         `json:"warehouse"`
	Date               flexTime       `json:"date"`
	ThreshingDate      flexTime       `json:"threshingDate"`
	Notes              string         `json:"notes"`
	CreatedAt          flexTime       `json:"createdAt"`
}

func decodeThreshing(raw json.RawMessage) (ledger.ThreshingRecord, error) {
	// The paddy quantity key changed case between writers; read it by exact spelling.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return ledger.ThreshingRecord{}, err
	}

	var s storedThreshing
	if err := json.Unmarshal(raw, &s); err != nil {
		return ledger.ThreshingRecord{}, err
	}

	var paddy types.Quantity
	if v, ok := keys["paddyQuantity"]; ok {
		if err := json.Unmarshal(v, &paddy); err != nil {
			return ledger.ThreshingRecord{}, err
		}
	} else if v, ok := keys["PaddyQuantity"]; ok {
		if err := json.Unmarshal(v, &paddy); err != nil {
			return ledger.ThreshingRecord{}, err
		}
	}

	return ledger.ThreshingRecord{
		ID:                 string(s.ID),
		PaddyStockID:       string(s.PaddyStockID),
		PaddyType:          strings.TrimSpace(s.PaddyType),
		PaddyQuantity:      paddy,
		RiceType:           strings.TrimSpace(s.RiceType),
		RiceGrade:          strings.TrimSpace(s.RiceGrade),
		RiceQuantity:       s.RiceQuantity,
		BrokenRiceType:     strings.TrimSpace(s.BrokenRiceType),
		BrokenRiceQuantity: s.BrokenRiceQuantity,
		PolishRiceType:     strings.TrimSpace(s.PolishRiceType),
		PolishRiceQuantity: s.PolishRiceQuantity,
		Warehouse:          strings.TrimSpace(s.Warehouse),
		Date:               firstTime(s.Date, s.ThreshingDate, s.CreatedAt),
		Notes:              s.Notes,
		CreatedAt:          firstTime(s.CreatedAt, s.Date, s.ThreshingDate),
	}, nil
}
