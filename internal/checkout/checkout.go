package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/insomniafuel/storefront-core/internal/identity"
	pkgerrors "github.com/insomniafuel/storefront-core/pkg/errors"
	"github.com/insomniafuel/storefront-core/pkg/logger"
	"github.com/insomniafuel/storefront-core/pkg/types"
)

// OrderPlacer is the slice of the storefront API checkout needs.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, lines []types.CartLine, idempotencyKey string) (string, error)
	ClearCart(ctx context.Context) ([]types.CartLine, error)
}

// CartAccess is the cart surface checkout reads and resets.
type CartAccess interface {
	Lines() []types.CartLine
	ClearLocal(ctx context.Context)
}

// Notifier hears about accepted orders so the presentation layer can
// route to the confirmation view.
type Notifier interface {
	OrderPlaced(ctx context.Context, orderID string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, orderID string)

func (f NotifierFunc) OrderPlaced(ctx context.Context, orderID string) {
	f(ctx, orderID)
}

// OrchestratorParams configure the checkout orchestrator.
type OrchestratorParams struct {
	Identity identity.Provider
	Cart     CartAccess
	Backend  OrderPlacer
	Notifier Notifier
	Logger   *logger.Logger
}

// Orchestrator turns the current cart into an order exactly once per
// submission. A pending guard rejects overlapping submissions, and each
// accepted submission carries a fresh idempotency key, so a double tap
// or a retried request can never produce two orders.
type Orchestrator struct {
	mu       sync.Mutex
	pending  bool
	identity identity.Provider
	cart     CartAccess
	backend  OrderPlacer
	notifier Notifier
	logg     *logger.Logger
}

// NewOrchestrator builds a checkout orchestrator. Notifier is optional.
func NewOrchestrator(params OrchestratorParams) (*Orchestrator, error) {
	if params.Identity == nil {
		return nil, fmt.Errorf("identity provider required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart access required")
	}
	if params.Backend == nil {
		return nil, fmt.Errorf("order placer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Orchestrator{
		identity: params.Identity,
		cart:     params.Cart,
		backend:  params.Backend,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// Pending reports whether a submission is currently in flight.
func (o *Orchestrator) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

// Submit places the current cart as an order and returns the accepted
// order id.
//
// Failure leaves the cart exactly as it was; the caller may retry.
// Success clears the cart locally no matter what, and clears the
// backend cart best-effort; a failed remote clear is logged, never
// surfaced, because the order already exists and the customer must see
// it as placed.
func (o *Orchestrator) Submit(ctx context.Context) (string, error) {
	if err := o.acquire(); err != nil {
		return "", err
	}
	defer o.release()

	ident, err := o.identity.Current(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving identity")
	}
	if !ident.IsAuthenticated() {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to place an order")
	}

	lines := o.cart.Lines()
	if len(lines) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	key := uuid.NewString()
	ctx = o.logg.WithUserID(ctx, ident.UserID)
	orderID, err := o.backend.CreateOrder(ctx, lines, key)
	if err != nil {
		o.logg.Error(ctx, "placing order", err)
		return "", err
	}

	ctx = o.logg.WithOrderID(ctx, orderID)
	if _, err := o.backend.ClearCart(ctx); err != nil {
		o.logg.Warn(ctx, "backend cart clear failed after order placement: "+err.Error())
	}
	o.cart.ClearLocal(ctx)
	o.logg.Info(ctx, "order placed")

	if o.notifier != nil {
		o.notifier.OrderPlaced(ctx, orderID)
	}
	return orderID, nil
}

func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending {
		return pkgerrors.New(pkgerrors.CodeConflict, "an order is already being placed")
	}
	o.pending = true
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.pending = false
	o.mu.Unlock()
}
