package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/insomniafuel/storefront-core/internal/identity"
	"github.com/insomniafuel/storefront-core/internal/menu"
	"github.com/insomniafuel/storefront-core/pkg/logger"
	"github.com/insomniafuel/storefront-core/pkg/types"
	"github.com/shopspring/decimal"
)

// RemoteCart is the slice of the storefront API the cart needs. Every
// mutation returns the authoritative snapshot; the store replaces its
// lines wholesale from the response instead of applying local deltas,
// so backend-side rounding and availability checks can never diverge
// from what the customer sees.
type RemoteCart interface {
	GetCart(ctx context.Context) ([]types.CartLine, error)
	UpsertLine(ctx context.Context, line types.CartLine) ([]types.CartLine, error)
	DeleteLine(ctx context.Context, itemID string) ([]types.CartLine, error)
	ClearCart(ctx context.Context) ([]types.CartLine, error)
}

// SnapshotStore persists the guest cart between sessions.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// StoreParams configure the cart store.
type StoreParams struct {
	Identity   identity.Provider
	Remote     RemoteCart
	Snapshots  SnapshotStore
	StorageKey string
	Logger     *logger.Logger
}

// Store is the single source of truth for the current cart contents,
// whatever the session's identity. All mutations are serialized through
// one lock, so at most one remote cart call is in flight at a time and
// responses can never apply out of order.
type Store struct {
	mu         sync.Mutex
	lines      []types.CartLine
	hydrated   bool
	identity   identity.Provider
	remote     RemoteCart
	snapshots  SnapshotStore
	storageKey string
	logg       *logger.Logger
}

// NewStore builds a cart store with the required dependencies.
func NewStore(params StoreParams) (*Store, error) {
	if params.Identity == nil {
		return nil, fmt.Errorf("identity provider required")
	}
	if params.Remote == nil {
		return nil, fmt.Errorf("remote cart required")
	}
	if params.Snapshots == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	key := params.StorageKey
	if key == "" {
		key = "cart:guest"
	}
	return &Store{
		identity:   params.Identity,
		remote:     params.Remote,
		snapshots:  params.Snapshots,
		storageKey: key,
		logg:       params.Logger,
	}, nil
}

// Lines returns a copy of the current cart lines.
func (s *Store) Lines() []types.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CloneLines(s.lines)
}

// Total returns the running cart total, recomputed from the lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.Cart{Lines: s.lines}.Subtotal()
}

// Snapshot returns the cart value object for the current lines.
func (s *Store) Snapshot() types.Cart {
	return types.Cart{Lines: s.Lines()}
}

// AddItem puts one more of the item (or its variant) in the cart. An
// item without a stable id is logged and ignored, matching the
// storefront's tolerant add-to-cart behavior.
func (s *Store) AddItem(ctx context.Context, item menu.Item, variantName string) error {
	line, err := menu.NewLine(item, variantName)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "item_name", item.Name), "ignoring add to cart: "+err.Error())
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ident, err := s.identity.Current(ctx)
	if err != nil {
		return s.remoteFailure(ctx, "add item", err)
	}

	if ident.IsAuthenticated() {
		if existing, ok := (types.Cart{Lines: s.lines}).FindLine(line.ItemID); ok {
			line.Quantity = existing.Quantity + 1
		}
		updated, err := s.remote.UpsertLine(ctx, line)
		if err != nil {
			return s.remoteFailure(ctx, "add item", err)
		}
		s.lines = updated
		return nil
	}

	s.lines = incrementLine(s.lines, line)
	s.persistGuest(ctx)
	return nil
}

// RemoveItem decreases the line's quantity by one, deleting the line
// when it reaches zero. Zero-quantity lines are never sent upstream;
// the backend sees a deletion instead.
func (s *Store) RemoveItem(ctx context.Context, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := types.Cart{Lines: s.lines}.FindLine(lineID)
	if !ok {
		return nil
	}

	ident, err := s.identity.Current(ctx)
	if err != nil {
		return s.remoteFailure(ctx, "remove item", err)
	}

	if ident.IsAuthenticated() {
		var updated []types.CartLine
		if existing.Quantity-1 <= 0 {
			updated, err = s.remote.DeleteLine(ctx, lineID)
		} else {
			existing.Quantity--
			updated, err = s.remote.UpsertLine(ctx, existing)
		}
		if err != nil {
			return s.remoteFailure(ctx, "remove item", err)
		}
		s.lines = updated
		return nil
	}

	s.lines = decrementLine(s.lines, lineID)
	s.persistGuest(ctx)
	return nil
}

// RemoveLine deletes the whole line regardless of quantity.
func (s *Store) RemoveLine(ctx context.Context, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident, err := s.identity.Current(ctx)
	if err != nil {
		return s.remoteFailure(ctx, "remove line", err)
	}

	if ident.IsAuthenticated() {
		updated, err := s.remote.DeleteLine(ctx, lineID)
		if err != nil {
			return s.remoteFailure(ctx, "remove line", err)
		}
		s.lines = updated
		return nil
	}

	s.lines = dropLine(s.lines, lineID)
	s.persistGuest(ctx)
	return nil
}

// Clear empties the cart. Guest carts also lose their durable snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident, err := s.identity.Current(ctx)
	if err != nil {
		return s.remoteFailure(ctx, "clear cart", err)
	}

	if ident.IsAuthenticated() {
		updated, err := s.remote.ClearCart(ctx)
		if err != nil {
			return s.remoteFailure(ctx, "clear cart", err)
		}
		s.lines = updated
		return nil
	}

	s.lines = nil
	s.eraseSnapshot(ctx)
	return nil
}

// ClearLocal resets the in-memory cart and erases the guest snapshot
// without touching the backend. Checkout uses it after an order has
// been accepted, where the remote clear is only best-effort.
func (s *Store) ClearLocal(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.eraseSnapshot(ctx)
}

// remoteFailure logs and leaves state at last-known-good. Mutations are
// never applied optimistically for authenticated carts, so there is
// nothing to roll back.
func (s *Store) remoteFailure(ctx context.Context, op string, err error) error {
	s.logg.Error(s.logg.WithField(ctx, "op", op), "cart mutation failed", err)
	return err
}

func incrementLine(lines []types.CartLine, line types.CartLine) []types.CartLine {
	for i := range lines {
		if lines[i].ItemID == line.ItemID {
			out := types.CloneLines(lines)
			out[i].Quantity++
			return out
		}
	}
	out := types.CloneLines(lines)
	return append(out, line)
}

func decrementLine(lines []types.CartLine, lineID string) []types.CartLine {
	out := make([]types.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.ItemID == lineID {
			line.Quantity--
		}
		if line.Quantity > 0 {
			out = append(out, line)
		}
	}
	return out
}

func dropLine(lines []types.CartLine, lineID string) []types.CartLine {
	out := make([]types.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.ItemID != lineID {
			out = append(out, line)
		}
	}
	return out
}
