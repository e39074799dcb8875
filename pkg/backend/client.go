package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/insomniafuel/storefront-core/pkg/config"
	pkgerrors "github.com/insomniafuel/storefront-core/pkg/errors"
	"github.com/insomniafuel/storefront-core/pkg/logger"
	"github.com/insomniafuel/storefront-core/pkg/types"
	"github.com/sony/gobreaker/v2"
)

var (
	errLoggerRequired = errors.New("backend logger is required")
	errTokensRequired = errors.New("backend token source is required")
)

// TokenSource supplies a fresh bearer credential per call. Every
// storefront endpoint is authenticated; a missing or expired credential
// is the caller's problem, not something the client refreshes itself.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the storefront API with centralized auth, logging,
// circuit breaking, and error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *logger.Logger
}

// NewClient validates the configuration and builds the API client.
func NewClient(cfg config.BackendConfig, tokens TokenSource, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if tokens == nil {
		return nil, errTokensRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend base url is required")
	}

	settings := gobreaker.Settings{
		Name:        "storefront-api",
		MaxRequests: uint32(cfg.BreakerMaxRequests),
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < uint32(cfg.BreakerMinRequests) {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.BreakerFailureRatio
		},
		// Rejections by the backend (4xx) are answers, not outages;
		// only dependency-class failures may trip the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !pkgerrors.IsRetryable(err)
		},
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    baseURL,
		tokens:     tokens,
		breaker:    gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:     logg,
	}, nil
}

// GetCart fetches the authenticated account's cart.
func (c *Client) GetCart(ctx context.Context) ([]types.CartLine, error) {
	var out cartEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// UpsertLine sends the line's NEW TOTAL quantity (not a delta) and
// returns the authoritative cart snapshot.
func (c *Client) UpsertLine(ctx context.Context, line types.CartLine) ([]types.CartLine, error) {
	var out cartEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/cart", upsertLineRequest{
		ItemID:   line.ItemID,
		Name:     line.Name,
		Price:    line.UnitPrice,
		Quantity: line.Quantity,
	}, "", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// DeleteLine removes the whole line and returns the updated snapshot.
func (c *Client) DeleteLine(ctx context.Context, itemID string) ([]types.CartLine, error) {
	var out cartEnvelope
	path := "/api/cart/" + url.PathEscape(itemID)
	if err := c.do(ctx, http.MethodDelete, path, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ClearCart empties the remote cart and returns the (empty) snapshot.
func (c *Client) ClearCart(ctx context.Context) ([]types.CartLine, error) {
	var out cartEnvelope
	if err := c.do(ctx, http.MethodDelete, "/api/cart", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, idempotencyKey string, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "obtaining bearer credential")
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, body, token, idempotencyKey)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storefront api circuit open")
		}
		return err
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding storefront api response")
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, token, idempotencyKey string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", method, path, map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling storefront api")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading storefront api response")
	}

	if resp.StatusCode >= 400 {
		c.log(ctx, "error", method, path, map[string]any{"status": resp.StatusCode})
		return nil, c.mapAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

func (c *Client) mapAPIError(status int, raw []byte) error {
	code := pkgerrors.CodeForHTTPStatus(status)
	message := pkgerrors.MetadataFor(code).PublicMessage

	var envelope apiErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error.Message != "" {
			message = envelope.Error.Message
		} else if envelope.Message != "" {
			message = envelope.Message
		}
	}
	return pkgerrors.New(code, message).WithDetails(map[string]any{"http_status": status})
}

func (c *Client) log(ctx context.Context, stage, method, path string, fields map[string]any) {
	entry := map[string]any{
		"component": "backend_client",
		"stage":     stage,
		"method":    method,
		"path":      path,
	}
	for k, v := range fields {
		entry[k] = v
	}
	c.logger.Warn(c.logger.WithFields(ctx, entry), "storefront api call failed")
}
