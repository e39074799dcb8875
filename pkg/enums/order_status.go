package enums

import "fmt"

// OrderStatus tracks the kitchen lifecycle of a placed order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// forwardRank orders the canonical pending -> preparing -> ready -> completed axis.
var forwardRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusPreparing: 1,
	OrderStatusReady:     2,
	OrderStatusCompleted: 3,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransition reports whether moving from s to next respects the
// monotonic forward path, with cancellation reachable from any
// non-terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !s.IsValid() || !next.IsValid() || s == next {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return forwardRank[next] > forwardRank[s]
}

// CanCorrect reports whether an operator may move the order from s to
// next at all. The counter staff sometimes picks the wrong status, so
// lateral and backward moves between non-terminal states are allowed;
// the backend remains the final authority on what it accepts.
func (s OrderStatus) CanCorrect(next OrderStatus) bool {
	if !s.IsValid() || !next.IsValid() || s == next {
		return false
	}
	return !s.IsTerminal()
}

// SelectableFrom lists the statuses an operator may pick for an order
// currently in s. Terminal states offer nothing.
func SelectableFrom(s OrderStatus) []OrderStatus {
	if !s.IsValid() || s.IsTerminal() {
		return nil
	}
	out := make([]OrderStatus, 0, len(validOrderStatuses)-1)
	for _, candidate := range validOrderStatuses {
		if candidate != s {
			out = append(out, candidate)
		}
	}
	return out
}

// OrderStatuses returns every known status in canonical order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
