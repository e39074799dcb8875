package cart

import (
	"context"
	"encoding/json"

	"github.com/insomniafuel/storefront-core/pkg/types"
)

// Hydrate loads the cart for the session's resolved identity.
// Authenticated sessions load the backend cart; guests load the durable
// local snapshot. While identity is still unknown nothing is loaded, so
// a half-resolved session can never overwrite a stored cart with an
// empty one. Hydrating twice in the same identity state is a no-op in
// effect: the load replaces lines wholesale, it never merges.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident, err := s.identity.Current(ctx)
	if err != nil {
		s.logg.Error(ctx, "resolving identity for cart hydration", err)
		return err
	}
	if !ident.IsResolved() {
		return nil
	}

	ctx = s.logg.WithSessionState(ctx, string(ident.State))

	if ident.IsAuthenticated() {
		lines, err := s.remote.GetCart(ctx)
		if err != nil {
			// Degrade to an empty cart rather than blocking the
			// session on a backend outage.
			s.logg.Error(ctx, "loading backend cart, starting empty", err)
			lines = nil
		}
		s.lines = lines
		s.hydrated = true
		return nil
	}

	s.lines = s.loadGuestSnapshot(ctx)
	s.hydrated = true
	return nil
}

// Hydrated reports whether a hydration pass has completed for the
// current identity state.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Reset drops the in-memory cart and hydration state. Call it on any
// identity transition (login, logout) and follow with Hydrate; the
// guest snapshot is left in place so a returning guest finds their
// cart again.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.hydrated = false
}

// loadGuestSnapshot reads and sanitizes the stored guest cart. Any
// malformed payload degrades to an empty cart; a corrupt snapshot must
// never take the storefront down.
func (s *Store) loadGuestSnapshot(ctx context.Context) []types.CartLine {
	raw, ok, err := s.snapshots.Get(ctx, s.storageKey)
	if err != nil {
		s.logg.Error(ctx, "reading guest cart snapshot, starting empty", err)
		return nil
	}
	if !ok {
		return nil
	}

	var lines []types.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logg.Warn(ctx, "guest cart snapshot is malformed, starting empty")
		return nil
	}

	out := make([]types.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.ItemID == "" || line.Quantity < 1 {
			continue
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// persistGuest writes the current lines through to the durable
// snapshot. Skipped until hydration has completed so a fresh process
// cannot clobber a stored cart with its initial empty state. Write
// failures are logged; the in-memory cart stays correct either way.
func (s *Store) persistGuest(ctx context.Context) {
	if !s.hydrated {
		return
	}
	raw, err := json.Marshal(s.lines)
	if err != nil {
		s.logg.Error(ctx, "encoding guest cart snapshot", err)
		return
	}
	if err := s.snapshots.Put(ctx, s.storageKey, raw); err != nil {
		s.logg.Error(ctx, "writing guest cart snapshot", err)
	}
}

func (s *Store) eraseSnapshot(ctx context.Context) {
	if err := s.snapshots.Delete(ctx, s.storageKey); err != nil {
		s.logg.Error(ctx, "erasing guest cart snapshot", err)
	}
}
