// Package etherscan implements the report.Explorer interface on top of the
// Etherscan API V2. All requests are HTTP GETs against a single base URL with
// module/action query parameters, authenticated by an API key.
//
// Transport-level failures (timeouts, 5xx) are retried by the underlying
// retryablehttp client. Etherscan signals throttling in the response body with
// an HTTP 200, so rate limits are additionally retried here with a bounded
// backoff; authentication rejections are never retried.
package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/intelligenceonchain/tornadoview/internal/pkg/resilience/retry"
	transporthttp "github.com/intelligenceonchain/tornadoview/internal/pkg/transport/http"
	"github.com/intelligenceonchain/tornadoview/internal/report"
)

const (
	// defaultBaseURL is the Etherscan API V2 endpoint.
	defaultBaseURL = "https://api.etherscan.io/v2/api"

	// defaultChainID selects Ethereum mainnet; the Tornado Cash ETH pools
	// exist only there.
	defaultChainID = 1

	// defaultPageSize is the maximum records per page the account endpoints
	// return.
	defaultPageSize = 10000
)

// Client talks to the Etherscan API V2.
type Client struct {
	baseURL  string
	chainID  int
	apiKey   string
	http     *retryablehttp.Client
	retrier  retry.Retry
	pageSize int
}

// Compile-time assertion that Client implements the report.Explorer port.
var _ report.Explorer = (*Client)(nil)

// Option defines a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used for tests and self-hosted
// Etherscan-compatible explorers.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithChainID overrides the chain id query parameter. Default: 1 (mainnet).
func WithChainID(id int) Option {
	return func(c *Client) {
		c.chainID = id
	}
}

// WithHTTPClient supplies a preconfigured retryable HTTP client.
func WithHTTPClient(hc *retryablehttp.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetrier supplies the bounded retry used for in-body rate limits.
func WithRetrier(r retry.Retry) Option {
	return func(c *Client) {
		c.retrier = r
	}
}

// WithPageSize overrides the pagination page size. Default: 10000, the
// remote maximum.
func WithPageSize(n int) Option {
	return func(c *Client) {
		c.pageSize = n
	}
}

// New creates an Etherscan client authenticated with the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		chainID:  defaultChainID,
		apiKey:   apiKey,
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = transporthttp.NewClient()
	}
	if c.retrier == nil {
		c.retrier = retry.New(
			retry.WithAttempts(3),
			retry.WithDelay(2*time.Second),
			retry.WithRetryIf(func(err error) bool { return errors.Is(err, report.ErrRateLimited) }),
		)
	}

	return c
}

// ValidateKey probes the API with a cheap stats call and reports whether the
// configured key is accepted.
func (c *Client) ValidateKey(ctx context.Context) error {
	_, err := c.getWithRetry(ctx, url.Values{
		"module": {"stats"},
		"action": {"ethsupply"},
	})
	return err
}

// apiResponse is the envelope every Etherscan V2 endpoint returns.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// getWithRetry performs a GET and retries bounded times when the response
// body signals throttling.
func (c *Client) getWithRetry(ctx context.Context, params url.Values) (json.RawMessage, error) {
	var result json.RawMessage

	err := c.retrier.Execute(ctx, func() error {
		var err error
		result, err = c.get(ctx, params)
		return err
	})
	return result, err
}

// get performs a single GET against the API and maps failures onto the
// report error taxonomy.
func (c *Client) get(ctx context.Context, params url.Values) (json.RawMessage, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("chainid", strconv.Itoa(c.chainID))
	query.Set("apikey", c.apiKey)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", report.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", report.ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP %d", report.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: HTTP %d", report.ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", report.ErrNetwork, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON response: %v", report.ErrNetwork, err)
	}

	return parsed.Result, parsed.err()
}

// err maps an unsuccessful response envelope onto the report error taxonomy.
// Etherscan reports "No transactions found" as a failure status; it is an
// empty result, not an error.
func (r apiResponse) err() error {
	if r.Status == "1" {
		return nil
	}
	if strings.EqualFold(r.Message, "No transactions found") {
		return nil
	}

	var detail string
	if err := json.Unmarshal(r.Result, &detail); err != nil || detail == "" {
		detail = r.Message
	}

	lowered := strings.ToLower(detail)
	switch {
	case strings.Contains(lowered, "invalid api key"), strings.Contains(lowered, "missing/invalid api key"):
		return fmt.Errorf("%w: %s", report.ErrAuth, detail)
	case strings.Contains(lowered, "rate limit"):
		return fmt.Errorf("%w: %s", report.ErrRateLimited, detail)
	default:
		return fmt.Errorf("etherscan: %s", detail)
	}
}
