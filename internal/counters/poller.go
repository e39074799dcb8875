package counters

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/insomniafuel/storefront-core/pkg/logger"
	"github.com/insomniafuel/storefront-core/pkg/metrics"
)

const defaultInterval = 60 * time.Second

// Source produces the current value of one badge counter.
type Source interface {
	Name() string
	Count(ctx context.Context) (int, error)
}

// PollerParams configure a badge counter poller.
type PollerParams struct {
	Source   Source
	Metrics  *metrics.PollMetrics
	Logger   *logger.Logger
	Interval time.Duration
	// OnChange fires when the observed value moves. Optional.
	OnChange func(ctx context.Context, value int)
}

// Poller keeps one navigation badge fresh. Badges are advisory: a
// failed poll resets the value to zero rather than showing a stale
// number, and the error never surfaces past the log.
type Poller struct {
	source   Source
	metrics  *metrics.PollMetrics
	logg     *logger.Logger
	interval time.Duration
	onChange func(ctx context.Context, value int)

	mu    sync.Mutex
	value int
}

// NewPoller builds a badge poller.
func NewPoller(params PollerParams) (*Poller, error) {
	if params.Source == nil {
		return nil, fmt.Errorf("source required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		source:   params.Source,
		metrics:  params.Metrics,
		logg:     params.Logger,
		interval: interval,
		onChange: params.OnChange,
	}, nil
}

// Value returns the last observed count.
func (p *Poller) Value() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Refresh polls the source once. The returned error is informational;
// the badge has already been reset to zero on failure.
func (p *Poller) Refresh(ctx context.Context) error {
	ctx = p.logg.WithField(ctx, "counter", p.source.Name())

	start := time.Now()
	count, err := p.source.Count(ctx)
	if p.metrics != nil {
		p.metrics.ObserveDuration(p.source.Name(), time.Since(start))
	}
	if err != nil {
		if p.metrics != nil {
			p.metrics.IncFailure(p.source.Name())
		}
		p.logg.Error(ctx, "badge counter poll failed", err)
		p.apply(ctx, 0)
		return err
	}
	if p.metrics != nil {
		p.metrics.IncSuccess(p.source.Name())
	}
	if count < 0 {
		count = 0
	}
	p.apply(ctx, count)
	return nil
}

// Run polls immediately, then on every tick until the context ends.
func (p *Poller) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = p.Refresh(ctx)
		}
	}
}

func (p *Poller) apply(ctx context.Context, value int) {
	p.mu.Lock()
	changed := p.value != value
	p.value = value
	p.mu.Unlock()
	if changed && p.onChange != nil {
		p.onChange(ctx, value)
	}
}
