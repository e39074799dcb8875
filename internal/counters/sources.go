package counters

import (
	"context"

	"github.com/insomniafuel/storefront-core/pkg/backend"
	"github.com/insomniafuel/storefront-core/pkg/enums"
	"github.com/insomniafuel/storefront-core/pkg/types"
)

// OrderLister is the order listing surface the pending-orders badge
// reads.
type OrderLister interface {
	ListOrders(ctx context.Context) ([]types.Order, error)
}

// ThreadLister is the chat listing surface the unread badges read.
type ThreadLister interface {
	MyThreads(ctx context.Context) ([]backend.ContactThread, error)
	AdminThreads(ctx context.Context) ([]backend.ContactThread, error)
}

// PendingOrders counts orders still waiting for the kitchen, for the
// admin navigation badge.
type PendingOrders struct {
	Lister OrderLister
}

func (s PendingOrders) Name() string { return "pending_orders" }

func (s PendingOrders) Count(ctx context.Context) (int, error) {
	orders, err := s.Lister.ListOrders(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, order := range orders {
		if order.Status == enums.OrderStatusPending {
			count++
		}
	}
	return count, nil
}

// UnreadMessages counts chat messages the viewer has not read yet. The
// admin badge sums across every thread; the customer badge only over
// their own.
type UnreadMessages struct {
	Lister ThreadLister
	Admin  bool
}

func (s UnreadMessages) Name() string {
	if s.Admin {
		return "unread_admin"
	}
	return "unread_user"
}

func (s UnreadMessages) Count(ctx context.Context) (int, error) {
	if s.Admin {
		threads, err := s.Lister.AdminThreads(ctx)
		if err != nil {
			return 0, err
		}
		return backend.UnreadByAdmin(threads), nil
	}
	threads, err := s.Lister.MyThreads(ctx)
	if err != nil {
		return 0, err
	}
	return backend.UnreadByUser(threads), nil
}
