package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/insomniafuel/storefront-core/pkg/enums"
	pkgerrors "github.com/insomniafuel/storefront-core/pkg/errors"
	"github.com/insomniafuel/storefront-core/pkg/types"
)

// CreateOrder submits the cart lines as a new order and returns the
// assigned order id. The idempotency key guards against duplicate
// submissions racing a slow network.
func (c *Client) CreateOrder(ctx context.Context, lines []types.CartLine, idempotencyKey string) (string, error) {
	if len(lines) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line")
	}

	var out createOrderResponse
	err := c.do(ctx, http.MethodPost, "/api/orders", createOrderRequest{Items: lines}, idempotencyKey, &out)
	if err != nil {
		return "", err
	}

	// Older deployments return {orderId}; newer ones {order:{_id}}.
	if out.Order != nil && out.Order.ID != "" {
		return out.Order.ID, nil
	}
	if out.OrderID != "" {
		return out.OrderID, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeDependency, "order created but no id returned")
}

// MyOrders lists the calling customer's orders.
func (c *Client) MyOrders(ctx context.Context) ([]types.Order, error) {
	var out myOrdersResponse
	if err := c.do(ctx, http.MethodGet, "/api/orders/my", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// GetOrder fetches a single order visible to the caller.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*types.Order, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	var out types.Order
	path := "/api/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns the full order collection (admin scope).
func (c *Client) ListOrders(ctx context.Context) ([]types.Order, error) {
	var out adminOrdersResponse
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// UpdateOrder mutates status and/or payment status (admin scope) and
// returns the updated order.
func (c *Client) UpdateOrder(ctx context.Context, orderID string, status *enums.OrderStatus, payment *enums.PaymentStatus) (*types.Order, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if status == nil && payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	var out types.Order
	path := "/api/orders/" + url.PathEscape(orderID)
	err := c.do(ctx, http.MethodPut, path, updateOrderRequest{
		Status:        status,
		PaymentStatus: payment,
	}, "", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
