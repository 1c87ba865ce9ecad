package okx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradelink_go/internal/domain"
	"tradelink_go/internal/infra"
)

// APIError is a response whose envelope code is not "0".
type APIError struct {
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("okx api error %s: %s", e.Code, e.Msg)
}

type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type balanceData struct {
	TotalEq decimal.Decimal `json:"totalEq"`
	Details []struct {
		Ccy      string          `json:"ccy"`
		AvailBal decimal.Decimal `json:"availBal"`
		Eq       decimal.Decimal `json:"eq"`
	} `json:"details"`
}

// Client issues private OKX REST calls signed by an Authenticator.
type Client struct {
	baseURL    string
	auth       domain.Authenticator
	httpClient *http.Client
	limiter    *infra.RateLimiter
	breaker    *infra.CircuitBreaker
}

// NewClient creates a REST client for baseURL.
func NewClient(baseURL string, auth domain.Authenticator) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		auth:       auth,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    infra.NewOKXAccountLimiter(),
		breaker:    infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("okx-rest")),
	}
}

// Do sends one signed request and returns the envelope's data field.
// GET query values are appended to the URL; a non-nil body is JSON encoded
// and signed as the request payload.
func (c *Client) Do(ctx context.Context, method domain.RESTMethod, path string, query url.Values, body any) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req := &domain.RESTRequest{Method: method, URL: u}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		s := string(b)
		req.Params = &s
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// Envelope rejections do not count as breaker failures.
	var data json.RawMessage
	var apiErr *APIError
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.send(ctx, req)
		if errors.As(err, &apiErr) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, apiErr
	}
	return data, nil
}

func (c *Client) send(ctx context.Context, req *domain.RESTRequest) (json.RawMessage, error) {
	signed, err := c.auth.AuthenticateREST(req)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	var reader io.Reader
	if signed.Params != nil {
		reader = strings.NewReader(*signed.Params)
	}
	httpReq, err := http.NewRequestWithContext(ctx, string(signed.Method), signed.URL, reader)
	if err != nil {
		return nil, err
	}
	for k, v := range signed.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", infra.DefaultUserAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Code != "0" {
		return nil, &APIError{Code: env.Code, Msg: env.Msg}
	}
	return env.Data, nil
}

// GetBalance returns the available balance of ccy in the trading account.
// A currency absent from the response has zero balance.
func (c *Client) GetBalance(ctx context.Context, ccy string) (decimal.Decimal, error) {
	data, err := c.Do(ctx, domain.MethodGet, "/api/v5/account/balance", url.Values{"ccy": {ccy}}, nil)
	if err != nil {
		return decimal.Zero, err
	}

	var accounts []balanceData
	if err := json.Unmarshal(data, &accounts); err != nil {
		return decimal.Zero, fmt.Errorf("decode balance: %w", err)
	}
	for _, acc := range accounts {
		for _, d := range acc.Details {
			if d.Ccy == ccy {
				slog.Debug("OKX balance", slog.String("ccy", ccy), slog.String("avail", d.AvailBal.String()))
				return d.AvailBal, nil
			}
		}
	}
	return decimal.Zero, nil
}
