package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusReady, OrderStatusCancelled, true},
		{OrderStatusPreparing, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatus("bogus"), OrderStatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.ok {
			t.Fatalf("%s -> %s expected %v got %v", tt.from, tt.to, tt.ok, got)
		}
	}
}

func TestOrderStatusCorrectionsAllowBackwardMoves(t *testing.T) {
	t.Parallel()

	if !OrderStatusPreparing.CanCorrect(OrderStatusPending) {
		t.Fatalf("operators may correct preparing back to pending")
	}
	if OrderStatusCompleted.CanCorrect(OrderStatusPending) {
		t.Fatalf("completed orders cannot be corrected")
	}
	if OrderStatusCancelled.CanCorrect(OrderStatusReady) {
		t.Fatalf("cancelled orders cannot be corrected")
	}
}

func TestSelectableFromTerminalIsEmpty(t *testing.T) {
	t.Parallel()

	if opts := SelectableFrom(OrderStatusCompleted); len(opts) != 0 {
		t.Fatalf("completed should offer no options, got %v", opts)
	}
	if opts := SelectableFrom(OrderStatusCancelled); len(opts) != 0 {
		t.Fatalf("cancelled should offer no options, got %v", opts)
	}
	opts := SelectableFrom(OrderStatusPending)
	if len(opts) != 4 {
		t.Fatalf("pending should offer the other four statuses, got %v", opts)
	}
	for _, opt := range opts {
		if opt == OrderStatusPending {
			t.Fatalf("current status should not be selectable")
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	if got, err := ParseOrderStatus("ready"); err != nil || got != OrderStatusReady {
		t.Fatalf("unexpected parse result %v %v", got, err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	t.Parallel()

	if !PaymentStatusUnpaid.CanTransition(PaymentStatusPaid) {
		t.Fatalf("unpaid -> paid must be allowed")
	}
	if PaymentStatusPaid.CanTransition(PaymentStatusUnpaid) {
		t.Fatalf("payment is never reverted")
	}
	if PaymentStatusPaid.CanTransition(PaymentStatusPaid) {
		t.Fatalf("no-op payment transition is not a transition")
	}
}
