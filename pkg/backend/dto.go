package backend

import (
	"github.com/insomniafuel/storefront-core/pkg/enums"
	"github.com/insomniafuel/storefront-core/pkg/types"
	"github.com/shopspring/decimal"
)

type cartEnvelope struct {
	Items    []types.CartLine `json:"items"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}

type upsertLineRequest struct {
	ItemID   string          `json:"menuItemId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type createOrderRequest struct {
	Items []types.CartLine `json:"items"`
}

type createOrderResponse struct {
	OrderID string `json:"orderId"`
	Order   *struct {
		ID string `json:"_id"`
	} `json:"order"`
}

type myOrdersResponse struct {
	Orders []types.Order `json:"orders"`
}

type adminOrdersResponse struct {
	Items []types.Order `json:"items"`
}

type updateOrderRequest struct {
	Status        *enums.OrderStatus   `json:"status,omitempty"`
	PaymentStatus *enums.PaymentStatus `json:"paymentStatus,omitempty"`
}

type apiErrorEnvelope struct {
	Message string `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
