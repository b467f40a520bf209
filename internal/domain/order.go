package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the inbound contract consumed from the order workflow. The
// workflow owns the order itself; this package only needs the fields
// required to build and audit a transmission.
type Order struct {
	ID         string
	SupplierID string
	OfficineID string
	CreatedAt  time.Time
	Lines      []OrderLine
}

// OrderLine is one ordered product position.
type OrderLine struct {
	ProductCode string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Validate rejects orders that must never reach the message builder:
// the builder itself assumes a non-empty, already-valid order.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("%w: order id is required", ErrValidation)
	}
	if strings.TrimSpace(o.SupplierID) == "" {
		return fmt.Errorf("%w: supplier id is required", ErrValidation)
	}
	if len(o.Lines) == 0 {
		return fmt.Errorf("%w: order must include at least one line", ErrValidation)
	}
	for i, line := range o.Lines {
		if strings.TrimSpace(line.ProductCode) == "" {
			return fmt.Errorf("%w: line %d: product code is required", ErrValidation, i+1)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line %d: quantity must be positive", ErrValidation, i+1)
		}
		if line.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: line %d: unit price must not be negative", ErrValidation, i+1)
		}
	}
	return nil
}
