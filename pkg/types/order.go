package types

import (
	"time"

	"github.com/insomniafuel/storefront-core/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is created once at checkout from a cart snapshot. Items are
// immutable after creation; status and payment status are the only
// fields that change, both through the admin state machine.
type Order struct {
	ID       string  `json:"_id"`
	UserID   *string `json:"userId"`
	UserName *string `json:"userName"`
	Email    *string `json:"email"`

	Items []CartLine `json:"items"`

	Subtotal   decimal.Decimal `json:"subtotal"`
	ServiceFee decimal.Decimal `json:"serviceFee"`
	Total      decimal.Decimal `json:"total"`
	Currency   enums.Currency  `json:"currency"`

	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Notes *string `json:"notes,omitempty"`
}

// Amount returns the charged total, falling back to the subtotal for
// records predating the service fee field.
func (o Order) Amount() decimal.Decimal {
	if !o.Total.IsZero() {
		return o.Total
	}
	return o.Subtotal
}

// ItemCount sums quantities over the order's line items.
func (o Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// ShortID returns the last four characters of the order id, the form
// staff use to call out orders.
func (o Order) ShortID() string {
	if len(o.ID) <= 4 {
		return o.ID
	}
	return o.ID[len(o.ID)-4:]
}

// CustomerName returns the display name or "Guest".
func (o Order) CustomerName() string {
	if o.UserName != nil && *o.UserName != "" {
		return *o.UserName
	}
	return "Guest"
}
