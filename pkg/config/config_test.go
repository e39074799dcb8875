package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_BACKEND_BASE_URL", "https://api.example.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env by default, got %q", cfg.App.Env)
	}
	if cfg.Poll.OrdersInterval != 60*time.Second {
		t.Fatalf("expected 60s orders poll interval, got %v", cfg.Poll.OrdersInterval)
	}
	if cfg.Guest.StorageKey != "cart:guest" {
		t.Fatalf("unexpected guest storage key %q", cfg.Guest.StorageKey)
	}
	if cfg.JWT.VerificationEnabled() {
		t.Fatalf("jwt verification should be off without a secret")
	}
}

func TestLoadRejectsMissingBaseURL(t *testing.T) {
	t.Setenv("STOREFRONT_BACKEND_BASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing backend base url")
	}
}

func TestLoadRejectsNonHTTPBaseURL(t *testing.T) {
	t.Setenv("STOREFRONT_BACKEND_BASE_URL", "ftp://api.example.test")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-http base url")
	}
}
