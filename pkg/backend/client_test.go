package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/insomniafuel/storefront-core/pkg/config"
	"github.com/insomniafuel/storefront-core/pkg/enums"
	pkgerrors "github.com/insomniafuel/storefront-core/pkg/errors"
	"github.com/insomniafuel/storefront-core/pkg/logger"
	"github.com/insomniafuel/storefront-core/pkg/types"
	"github.com/shopspring/decimal"
)

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := config.BackendConfig{
		BaseURL:             baseURL,
		RequestTimeout:      5 * time.Second,
		BreakerMaxRequests:  3,
		BreakerInterval:     time.Minute,
		BreakerTimeout:      30 * time.Second,
		BreakerMinRequests:  100,
		BreakerFailureRatio: 0.6,
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(cfg, staticTokens("tok-123"), logg)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	return client
}

func TestGetCartSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":    []map[string]any{{"menuItemId": "latte", "name": "Latte", "price": 5.5, "quantity": 2}},
			"subtotal": 11.0,
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	lines, err := client.GetCart(context.Background())
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if len(lines) != 1 || lines[0].ItemID != "latte" || lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines %+v", lines)
	}
	if !lines[0].UnitPrice.Equal(decimal.RequireFromString("5.5")) {
		t.Fatalf("unexpected unit price %s", lines[0].UnitPrice)
	}
}

func TestUpsertLineSendsNewTotalQuantity(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/cart" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.UpsertLine(context.Background(), types.CartLine{
		ItemID:    "latte",
		Name:      "Latte",
		UnitPrice: decimal.RequireFromString("5.50"),
		Quantity:  3,
	})
	if err != nil {
		t.Fatalf("UpsertLine: %v", err)
	}
	if payload["quantity"] != float64(3) {
		t.Fatalf("expected absolute quantity 3, got %v", payload["quantity"])
	}
	if payload["menuItemId"] != "latte" {
		t.Fatalf("expected menuItemId, got %v", payload["menuItemId"])
	}
}

func TestCreateOrderHandlesBothResponseShapes(t *testing.T) {
	responses := []string{
		`{"orderId":"a1b2"}`,
		`{"order":{"_id":"c3d4"}}`,
	}
	var call int
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		_, _ = w.Write([]byte(responses[call]))
		call++
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	lines := []types.CartLine{{ItemID: "latte", Name: "Latte", UnitPrice: decimal.New(55, -1), Quantity: 1}}

	id, err := client.CreateOrder(context.Background(), lines, "key-1")
	if err != nil || id != "a1b2" {
		t.Fatalf("expected a1b2, got %q err=%v", id, err)
	}
	if gotKey != "key-1" {
		t.Fatalf("expected idempotency key header, got %q", gotKey)
	}

	id, err = client.CreateOrder(context.Background(), lines, "key-2")
	if err != nil || id != "c3d4" {
		t.Fatalf("expected c3d4, got %q err=%v", id, err)
	}
}

func TestCreateOrderRejectsEmptyLines(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid")
	_, err := client.CreateOrder(context.Background(), nil, "key")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestErrorMappingUsesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"order already completed"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	status := enums.OrderStatusPreparing
	_, err := client.UpdateOrder(context.Background(), "a1b2", &status, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if typed.Message() != "order already completed" {
		t.Fatalf("expected backend message, got %q", typed.Message())
	}
}

func TestServerErrorsAreRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.GetCart(context.Background())
	if !pkgerrors.IsRetryable(err) {
		t.Fatalf("5xx should map to a retryable dependency error, got %v", err)
	}
}

func TestUpdateOrderRequiresAField(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid")
	_, err := client.UpdateOrder(context.Background(), "a1b2", nil, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
