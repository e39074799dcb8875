package identity

import (
	"context"
	"sync"
)

// State describes how much is known about the current session.
// Resolution starts at StateUnknown; cart hydration must not run until
// the state settles to guest or authenticated.
type State string

const (
	StateUnknown       State = "unknown"
	StateGuest         State = "guest"
	StateAuthenticated State = "authenticated"
)

// Identity is the resolved owner of the current session.
type Identity struct {
	State       State
	UserID      string
	DisplayName string
	Email       string
	Admin       bool
}

// IsAuthenticated reports whether the session belongs to an account.
func (i Identity) IsAuthenticated() bool {
	return i.State == StateAuthenticated
}

// IsResolved reports whether identity resolution has completed.
func (i Identity) IsResolved() bool {
	return i.State != StateUnknown
}

// Provider is the identity collaborator. It answers two questions:
// who is the current session, and what bearer credential should an
// authenticated call carry right now. Tokens are requested fresh per
// call; the core never caches or refreshes them.
type Provider interface {
	Current(ctx context.Context) (Identity, error)
	Token(ctx context.Context) (string, error)
}

// StaticProvider is a Provider with settable state, used by tests and
// local tooling.
type StaticProvider struct {
	mu       sync.RWMutex
	identity Identity
	token    string
}

// NewStaticProvider starts in the unknown state.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{identity: Identity{State: StateUnknown}}
}

// Set replaces the resolved identity and credential.
func (p *StaticProvider) Set(identity Identity, token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = identity
	p.token = token
}

// SetGuest resolves the session as anonymous.
func (p *StaticProvider) SetGuest() {
	p.Set(Identity{State: StateGuest}, "")
}

func (p *StaticProvider) Current(ctx context.Context) (Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.identity, nil
}

func (p *StaticProvider) Token(ctx context.Context) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, nil
}
