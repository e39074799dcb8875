package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/insomniafuel/storefront-core/pkg/logger"
	"github.com/insomniafuel/storefront-core/pkg/types"
)

const defaultTrackInterval = 30 * time.Second

// TrackerParams configure a single-order tracker.
type TrackerParams struct {
	Backend  Backend
	OrderID  string
	OnChange func(ctx context.Context, order types.Order)
	Logger   *logger.Logger
	Interval time.Duration
}

// Tracker follows one order for the customer who placed it, polling
// until the order reaches a terminal status. The confirmation view
// drives its lifecycle.
type Tracker struct {
	backend  Backend
	orderID  string
	onChange func(ctx context.Context, order types.Order)
	logg     *logger.Logger
	interval time.Duration

	mu      sync.Mutex
	current *types.Order
}

// NewTracker builds a tracker for the given order. OnChange is optional.
func NewTracker(params TrackerParams) (*Tracker, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	if params.OrderID == "" {
		return nil, fmt.Errorf("order id required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultTrackInterval
	}
	return &Tracker{
		backend:  params.Backend,
		orderID:  params.OrderID,
		onChange: params.OnChange,
		logg:     params.Logger,
		interval: interval,
	}, nil
}

// Current returns the last observed order state, if any.
func (t *Tracker) Current() (types.Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return types.Order{}, false
	}
	return *t.current, true
}

// Run polls until the order settles in a terminal status or the context
// ends. Poll failures are logged and retried on the next tick.
func (t *Tracker) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = t.logg.WithOrderID(ctx, t.orderID)

	if done := t.poll(ctx); done {
		return nil
	}
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done := t.poll(ctx); done {
				return nil
			}
		}
	}
}

// poll fetches the order once and reports whether tracking is finished.
func (t *Tracker) poll(ctx context.Context) bool {
	order, err := t.backend.GetOrder(ctx, t.orderID)
	if err != nil {
		t.logg.Error(ctx, "tracking poll failed", err)
		return false
	}

	changed := t.apply(*order)
	if changed && t.onChange != nil {
		t.onChange(ctx, *order)
	}
	if order.Status.IsTerminal() {
		t.logg.Info(t.logg.WithField(ctx, "status", string(order.Status)), "order settled")
		return true
	}
	return false
}

func (t *Tracker) apply(order types.Order) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	changed := t.current == nil ||
		t.current.Status != order.Status ||
		t.current.PaymentStatus != order.PaymentStatus
	t.current = &order
	return changed
}
