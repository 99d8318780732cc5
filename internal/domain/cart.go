package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CartEntry is the snapshot written by "add to cart". The quantity is not part
// of the snapshot: the cart total is always computed from the live session
// quantity.
type CartEntry struct {
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (e CartEntry) LineTotal(quantity int) decimal.Decimal {
	return e.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Receipt records a completed checkout.
type Receipt struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
}

// Validate reports whether r describes something that was actually bought.
func (r Receipt) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidReceipt)
	case r.Quantity <= 0:
		return fmt.Errorf("%w: quantity %d must be positive", ErrInvalidReceipt, r.Quantity)
	case r.UnitPrice.IsNegative():
		return fmt.Errorf("%w: negative unit price", ErrInvalidReceipt)
	case !r.Total.Equal(r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))):
		return fmt.Errorf("%w: total %s does not match %d x %s", ErrInvalidReceipt, r.Total, r.Quantity, r.UnitPrice)
	}
	return nil
}
