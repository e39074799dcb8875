package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/insomniafuel/storefront-core/pkg/logger"
	"github.com/insomniafuel/storefront-core/pkg/metrics"
	"github.com/insomniafuel/storefront-core/pkg/types"
)

const defaultWatchInterval = 60 * time.Second

const watcherPollerName = "orders"

// Alerter hears about orders that appeared since the previous poll.
type Alerter interface {
	NewOrders(ctx context.Context, orders []types.Order)
}

// AlerterFunc adapts a function to the Alerter interface.
type AlerterFunc func(ctx context.Context, orders []types.Order)

func (f AlerterFunc) NewOrders(ctx context.Context, orders []types.Order) {
	f(ctx, orders)
}

// WatcherParams configure the order watcher.
type WatcherParams struct {
	Backend  Backend
	Alerter  Alerter
	Metrics  *metrics.PollMetrics
	Logger   *logger.Logger
	Interval time.Duration
}

// Watcher polls the full order listing on a fixed cadence and keeps the
// latest successful snapshot. An order id never seen before triggers
// exactly one alert; the first successful poll only seeds the known set,
// because everything is "new" to a fresh process and alerting on it all
// would be noise.
type Watcher struct {
	backend  Backend
	alerter  Alerter
	metrics  *metrics.PollMetrics
	logg     *logger.Logger
	interval time.Duration

	mu       sync.Mutex
	snapshot []types.Order
	known    map[string]struct{}
	polled   bool
}

// NewWatcher builds an order watcher. Alerter and Metrics are optional.
func NewWatcher(params WatcherParams) (*Watcher, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return &Watcher{
		backend:  params.Backend,
		alerter:  params.Alerter,
		metrics:  params.Metrics,
		logg:     params.Logger,
		interval: interval,
		known:    make(map[string]struct{}),
	}, nil
}

// Run polls immediately, then on every tick until the context ends.
func (w *Watcher) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := w.Refresh(ctx); err != nil {
		w.logg.Error(ctx, "order poll failed", err)
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logg.Info(ctx, "order watcher context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				w.logg.Error(ctx, "order poll failed", err)
			}
		}
	}
}

// Refresh runs one poll. On failure the previous snapshot and known set
// are kept untouched, so a blip cannot re-trigger alerts or blank the
// board.
func (w *Watcher) Refresh(ctx context.Context) error {
	start := time.Now()
	listing, err := w.backend.ListOrders(ctx)
	w.observeDuration(time.Since(start))
	if err != nil {
		w.recordFailure()
		return err
	}
	w.recordSuccess()

	fresh := w.apply(listing)
	if len(fresh) > 0 {
		w.addNewOrders(len(fresh))
		w.logg.Info(w.logg.WithField(ctx, "count", len(fresh)), "new orders observed")
		if w.alerter != nil {
			w.alerter.NewOrders(ctx, fresh)
		}
	}
	return nil
}

// Snapshot returns the orders from the last successful poll.
func (w *Watcher) Snapshot() []types.Order {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]types.Order, len(w.snapshot))
	copy(out, w.snapshot)
	return out
}

// Select runs a board query against the current snapshot.
func (w *Watcher) Select(query Query) Page {
	return Select(w.Snapshot(), query)
}

// Summary aggregates the current snapshot for the board header.
func (w *Watcher) Summary() Summary {
	return Summarize(w.Snapshot(), time.Now())
}

// apply stores the listing and returns orders whose ids were not in the
// known set. The first poll returns nothing.
func (w *Watcher) apply(listing []types.Order) []types.Order {
	w.mu.Lock()
	defer w.mu.Unlock()

	var fresh []types.Order
	if w.polled {
		for _, order := range listing {
			if _, ok := w.known[order.ID]; !ok {
				fresh = append(fresh, order)
			}
		}
	}

	for _, order := range listing {
		w.known[order.ID] = struct{}{}
	}
	w.snapshot = listing
	w.polled = true
	return fresh
}

func (w *Watcher) observeDuration(duration time.Duration) {
	if w.metrics == nil {
		return
	}
	w.metrics.ObserveDuration(watcherPollerName, duration)
}

func (w *Watcher) recordSuccess() {
	if w.metrics == nil {
		return
	}
	w.metrics.IncSuccess(watcherPollerName)
}

func (w *Watcher) recordFailure() {
	if w.metrics == nil {
		return
	}
	w.metrics.IncFailure(watcherPollerName)
}

func (w *Watcher) addNewOrders(count int) {
	if w.metrics == nil {
		return
	}
	w.metrics.AddNewOrders(count)
}
