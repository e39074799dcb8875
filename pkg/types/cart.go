package types

import (
	"github.com/shopspring/decimal"
)

// CartLine is one entry in a cart, keyed by catalog item (or
// item+variant via a composite id).
type CartLine struct {
	ItemID    string          `json:"menuItemId" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
}

// LineTotal returns unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the unsubmitted collection of selected lines owned by exactly
// one session. Totals are always derived from the lines, never stored.
type Cart struct {
	Lines []CartLine `json:"items"`
}

// Subtotal sums unit price times quantity over all lines.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// ItemCount sums quantities over all lines.
func (c Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// FindLine returns the line with the given id, if present.
func (c Cart) FindLine(itemID string) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ItemID == itemID {
			return line, true
		}
	}
	return CartLine{}, false
}

// CloneLines returns a defensive copy of the line slice.
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
