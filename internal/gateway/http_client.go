package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tradelink_go/internal/domain"
	"tradelink_go/internal/infra"
)

// Gateway REST endpoints.
const (
	pathPing       = "/"
	pathConnectors = "/connectors"
	pathStatus     = "/network/status"
	pathConfig     = "/config"
)

// HTTPClient implements domain.GatewayClient over the gateway's REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for baseURL. timeout bounds every call;
// the monitor applies its own shorter deadline to Ping.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Ping reports whether the gateway answers its root endpoint with 2xx.
func (c *HTTPClient) Ping(ctx context.Context) (bool, error) {
	resp, err := c.get(ctx, pathPing)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// GetConnectors lists the gateway's connectors.
func (c *HTTPClient) GetConnectors(ctx context.Context, failSilently bool) (domain.ConnectorList, error) {
	var list domain.ConnectorList
	raw, err := c.getBody(ctx, pathConnectors)
	if err == nil {
		err = json.Unmarshal(raw, &list)
	}
	if err != nil {
		return domain.ConnectorList{}, c.fail(ctx, pathConnectors, err, failSilently)
	}
	return list, nil
}

// GetStatus returns the per-chain network status. A single-object response
// is returned as a one-element slice.
func (c *HTTPClient) GetStatus(ctx context.Context, failSilently bool) ([]domain.ChainStatus, error) {
	raw, err := c.getBody(ctx, pathStatus)
	if err != nil {
		return nil, c.fail(ctx, pathStatus, err, failSilently)
	}

	raw = bytes.TrimSpace(raw)
	var statuses []domain.ChainStatus
	if len(raw) > 0 && raw[0] == '{' {
		var one domain.ChainStatus
		err = json.Unmarshal(raw, &one)
		statuses = []domain.ChainStatus{one}
	} else {
		err = json.Unmarshal(raw, &statuses)
	}
	if err != nil {
		return nil, c.fail(ctx, pathStatus, err, failSilently)
	}
	return statuses, nil
}

// GetConfiguration returns the gateway's full configuration document.
func (c *HTTPClient) GetConfiguration(ctx context.Context, failSilently bool) (json.RawMessage, error) {
	raw, err := c.getBody(ctx, pathConfig)
	if err == nil && !json.Valid(raw) {
		err = fmt.Errorf("invalid JSON body")
	}
	if err != nil {
		return nil, c.fail(ctx, pathConfig, err, failSilently)
	}
	return json.RawMessage(raw), nil
}

// fail applies failSilently, except that cancellation always propagates.
func (c *HTTPClient) fail(ctx context.Context, path string, err error, failSilently bool) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if failSilently {
		slog.Debug("Gateway request failed silently", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	return fmt.Errorf("gateway %s: %w", path, err)
}

func (c *HTTPClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", infra.DefaultUserAgent)
	return c.httpClient.Do(req)
}

func (c *HTTPClient) getBody(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return body, nil
}

var _ domain.GatewayClient = (*HTTPClient)(nil)
