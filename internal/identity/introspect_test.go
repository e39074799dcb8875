package identity

import (
	"context"
	"testing"
	"time"

	"github.com/insomniafuel/storefront-core/pkg/config"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "insomnia-fuel"}

func TestIntrospectRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := MintTestToken(testJWT, time.Now(), "user-1", "Mia", "mia@example.test", "admin")
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}

	claims, err := Introspect(token)
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	if claims.Subject != "user-1" || claims.Name != "Mia" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.IsAdmin() {
		t.Fatalf("expected admin role")
	}
}

func TestIntrospectVerifiedRejectsBadSignature(t *testing.T) {
	t.Parallel()

	token, err := MintTestToken(config.JWTConfig{Secret: "other-secret"}, time.Now(), "user-1", "", "", "client")
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	if _, err := IntrospectVerified(testJWT, token); err == nil {
		t.Fatalf("expected signature verification failure")
	}
}

func TestFromToken(t *testing.T) {
	t.Parallel()

	token, err := MintTestToken(testJWT, time.Now(), "user-2", "Sam", "sam@example.test", "client")
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}

	ident, err := FromToken(token)
	if err != nil {
		t.Fatalf("from token: %v", err)
	}
	if !ident.IsAuthenticated() || ident.UserID != "user-2" || ident.Admin {
		t.Fatalf("unexpected identity %+v", ident)
	}
}

func TestFromTokenGarbage(t *testing.T) {
	t.Parallel()

	if _, err := FromToken("not-a-jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestStaticProviderStates(t *testing.T) {
	t.Parallel()

	provider := NewStaticProvider()
	ident, _ := provider.Current(context.Background())
	if ident.IsResolved() {
		t.Fatalf("provider should start unresolved")
	}

	provider.SetGuest()
	ident, _ = provider.Current(context.Background())
	if !ident.IsResolved() || ident.IsAuthenticated() {
		t.Fatalf("expected guest state, got %+v", ident)
	}
}
