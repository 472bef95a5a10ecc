package ledger

import "ricemill/internal/core/types"

// Status is the stock level category of a lot.
type Status string

const (
	StatusInStock    Status = "In Stock"
	StatusLowStock   Status = "Low Stock"
	StatusOutOfStock Status = "Out of Stock"
	// StatusReserved appears in legacy collections only; it is re-derived on read.
	StatusReserved Status = "Reserved"
)

// LowStockThreshold is the quantity below which a lot is Low Stock.
const LowStockThreshold = types.Quantity(100 * types.QuantityScale)

// DeriveStatus maps a quantity to its status.
func DeriveStatus(q types.Quantity) Status {
	switch {
	case q <= 0:
		return StatusOutOfStock
	case q < LowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// NeedsAttention reports whether the status should raise a low-stock alert.
func (s Status) NeedsAttention() bool {
	return s == StatusLowStock || s == StatusOutOfStock
}
