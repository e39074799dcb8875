package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/insomniafuel/storefront-core/pkg/enums"
	pkgerrors "github.com/insomniafuel/storefront-core/pkg/errors"
	"github.com/insomniafuel/storefront-core/pkg/logger"
	"github.com/insomniafuel/storefront-core/pkg/types"
)

// ErrDeclined is returned when the operator backs out of a confirmed
// status change. The order is untouched.
var ErrDeclined = errors.New("status update declined")

// Backend is the slice of the storefront API the order services need.
type Backend interface {
	ListOrders(ctx context.Context) ([]types.Order, error)
	MyOrders(ctx context.Context) ([]types.Order, error)
	GetOrder(ctx context.Context, orderID string) (*types.Order, error)
	UpdateOrder(ctx context.Context, orderID string, status *enums.OrderStatus, payment *enums.PaymentStatus) (*types.Order, error)
}

// Confirmer asks the operator before an irreversible change. Moving an
// order to a terminal status cannot be undone, so those go through it.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, prompt string) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// ServiceParams configure the order service.
type ServiceParams struct {
	Backend   Backend
	Confirmer Confirmer
	Logger    *logger.Logger
}

// Service drives order status changes on behalf of the admin board and
// exposes read paths for customers.
type Service struct {
	backend   Backend
	confirmer Confirmer
	logg      *logger.Logger
}

// NewService builds an order service. Confirmer is optional; without
// one, terminal moves proceed unprompted.
func NewService(params ServiceParams) (*Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		backend:   params.Backend,
		confirmer: params.Confirmer,
		logg:      params.Logger,
	}, nil
}

// List returns every order (admin scope).
func (s *Service) List(ctx context.Context) ([]types.Order, error) {
	return s.backend.ListOrders(ctx)
}

// MyOrders returns the calling customer's orders.
func (s *Service) MyOrders(ctx context.Context) ([]types.Order, error) {
	return s.backend.MyOrders(ctx)
}

// Get returns one order visible to the caller.
func (s *Service) Get(ctx context.Context, orderID string) (*types.Order, error) {
	return s.backend.GetOrder(ctx, orderID)
}

// UpdateStatus moves the order to the next status. Terminal orders are
// frozen; non-terminal orders may move to any other status, corrections
// included. Terminal targets require operator confirmation.
func (s *Service) UpdateStatus(ctx context.Context, order types.Order, next enums.OrderStatus) (*types.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": string(next)})
	}
	if !order.Status.CanCorrect(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot move to that status").
			WithDetails(map[string]any{"from": string(order.Status), "to": string(next)})
	}
	if next.IsTerminal() && !s.confirmed(ctx, fmt.Sprintf("Mark order #%s as %s? This cannot be undone.", order.ShortID(), next)) {
		return nil, ErrDeclined
	}

	ctx = s.logg.WithOrderID(ctx, order.ID)
	updated, err := s.backend.UpdateOrder(ctx, order.ID, &next, nil)
	if err != nil {
		s.logg.Error(ctx, "updating order status", err)
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "status", string(next)), "order status updated")
	return updated, nil
}

// MarkPaid flips an unpaid order to paid after confirmation. Payment
// status only ever moves forward.
func (s *Service) MarkPaid(ctx context.Context, order types.Order) (*types.Order, error) {
	if !order.PaymentStatus.CanTransition(enums.PaymentStatusPaid) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if !s.confirmed(ctx, fmt.Sprintf("Mark order #%s as paid?", order.ShortID())) {
		return nil, ErrDeclined
	}

	ctx = s.logg.WithOrderID(ctx, order.ID)
	paid := enums.PaymentStatusPaid
	updated, err := s.backend.UpdateOrder(ctx, order.ID, nil, &paid)
	if err != nil {
		s.logg.Error(ctx, "marking order paid", err)
		return nil, err
	}
	s.logg.Info(ctx, "order marked paid")
	return updated, nil
}

func (s *Service) confirmed(ctx context.Context, prompt string) bool {
	if s.confirmer == nil {
		return true
	}
	return s.confirmer.Confirm(ctx, prompt)
}
