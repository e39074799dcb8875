package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/insomniafuel/storefront-core/internal/identity"
	pkgerrors "github.com/insomniafuel/storefront-core/pkg/errors"
	"github.com/insomniafuel/storefront-core/pkg/logger"
	"github.com/insomniafuel/storefront-core/pkg/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type stubPlacer struct {
	mu         sync.Mutex
	orderID    string
	createErr  error
	clearErr   error
	keys       []string
	clears     int
	createGate chan struct{}
}

func (p *stubPlacer) CreateOrder(ctx context.Context, lines []types.CartLine, key string) (string, error) {
	if p.createGate != nil {
		<-p.createGate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	if p.createErr != nil {
		return "", p.createErr
	}
	return p.orderID, nil
}

func (p *stubPlacer) ClearCart(ctx context.Context) ([]types.CartLine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clears++
	return nil, p.clearErr
}

type stubCart struct {
	mu     sync.Mutex
	lines  []types.CartLine
	clears int
}

func (c *stubCart) Lines() []types.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return types.CloneLines(c.lines)
}

func (c *stubCart) ClearLocal(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.clears++
}

func filledCart() *stubCart {
	return &stubCart{lines: []types.CartLine{
		{ItemID: "flat-white", Name: "Flat White", UnitPrice: decimal.RequireFromString("5.50"), Quantity: 2},
	}}
}

func authProvider() *identity.StaticProvider {
	provider := identity.NewStaticProvider()
	provider.Set(identity.Identity{State: identity.StateAuthenticated, UserID: "user-1"}, "token-1")
	return provider
}

func newTestOrchestrator(t *testing.T, provider identity.Provider, cart CartAccess, placer OrderPlacer, notifier Notifier) *Orchestrator {
	t.Helper()
	orch, err := NewOrchestrator(OrchestratorParams{
		Identity: provider,
		Cart:     cart,
		Backend:  placer,
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "checkout-test", Level: zerolog.Disabled}),
	})
	if err != nil {
		t.Fatalf("building orchestrator: %v", err)
	}
	return orch
}

func TestSubmitSuccessClearsCartAndNotifies(t *testing.T) {
	t.Parallel()

	cart := filledCart()
	placer := &stubPlacer{orderID: "order-123"}
	var notified string
	orch := newTestOrchestrator(t, authProvider(), cart, placer, NotifierFunc(func(ctx context.Context, orderID string) {
		notified = orderID
	}))

	orderID, err := orch.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if orderID != "order-123" || notified != "order-123" {
		t.Fatalf("unexpected order id %q / notification %q", orderID, notified)
	}
	if cart.clears != 1 || placer.clears != 1 {
		t.Fatalf("expected local and remote clears, got local=%d remote=%d", cart.clears, placer.clears)
	}
	if len(placer.keys) != 1 || placer.keys[0] == "" {
		t.Fatalf("expected an idempotency key, got %+v", placer.keys)
	}
}

func TestSubmitFailureLeavesCartUntouched(t *testing.T) {
	t.Parallel()

	cart := filledCart()
	placer := &stubPlacer{createErr: pkgerrors.New(pkgerrors.CodeDependency, "backend down")}
	orch := newTestOrchestrator(t, authProvider(), cart, placer, nil)

	if _, err := orch.Submit(context.Background()); err == nil {
		t.Fatalf("expected submission failure")
	}
	if cart.clears != 0 || len(cart.Lines()) != 1 {
		t.Fatalf("failed submission must not touch the cart")
	}
	if placer.clears != 0 {
		t.Fatalf("failed submission must not clear the backend cart")
	}
}

func TestSubmitRemoteClearFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	cart := filledCart()
	placer := &stubPlacer{orderID: "order-9", clearErr: errors.New("clear failed")}
	orch := newTestOrchestrator(t, authProvider(), cart, placer, nil)

	orderID, err := orch.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit must succeed despite clear failure: %v", err)
	}
	if orderID != "order-9" || cart.clears != 1 {
		t.Fatalf("order must be reported placed and cart cleared locally")
	}
}

func TestSubmitRejectsGuest(t *testing.T) {
	t.Parallel()

	provider := identity.NewStaticProvider()
	provider.SetGuest()
	orch := newTestOrchestrator(t, provider, filledCart(), &stubPlacer{orderID: "x"}, nil)

	_, err := orch.Submit(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	orch := newTestOrchestrator(t, authProvider(), &stubCart{}, &stubPlacer{orderID: "x"}, nil)

	_, err := orch.Submit(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitPendingGuardRejectsOverlap(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	placer := &stubPlacer{orderID: "order-1", createGate: gate}
	orch := newTestOrchestrator(t, authProvider(), filledCart(), placer, nil)

	done := make(chan error, 1)
	go func() {
		_, err := orch.Submit(context.Background())
		done <- err
	}()

	for !orch.Pending() {
		time.Sleep(time.Millisecond)
	}

	_, err := orch.Submit(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict while a submission is pending, got %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if orch.Pending() {
		t.Fatalf("pending flag must reset after completion")
	}
}
