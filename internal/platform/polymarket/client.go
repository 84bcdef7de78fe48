// Package polymarket is the REST client for the upstream prediction-market
// data provider, together with the normalizer that turns its loosely-typed
// payloads into canonical domain records.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Widell98/MarketMind-sub004/internal/domain"
)

// Client talks to the provider's market-discovery REST API.
type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	httpClient *http.Client
}

// ClientConfig holds the provider connection parameters.
type ClientConfig struct {
	BaseURL    string
	APIKey     string // optional bearer token
	Timeout    time.Duration
	MaxRetries int
}

// NewClient creates a provider client. baseURL is the API root, e.g.
// "https://gamma-api.polymarket.com".
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchMarkets retrieves the full market list and normalizes every
// record. A malformed batch shape degrades to an empty list; individual
// bad records degrade field-by-field inside Normalize and never fail
// the batch.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(fetchBatchLimit))

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket: fetch markets: %w", err)
	}

	raws := decodeMarketList(body)
	markets := make([]domain.Market, 0, len(raws))
	for i := range raws {
		markets = append(markets, raws[i].Normalize(i))
	}
	return markets, nil
}

// SearchRaw runs a market search and returns the provider's payload as
// an opaque blob for the persisted lookup cache.
func (c *Client) SearchRaw(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(searchBatchLimit))

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket: search markets: %w", err)
	}
	return body, nil
}

const (
	fetchBatchLimit  = 500
	searchBatchLimit = 50
)

// decodeMarketList accepts either a bare top-level array or an object
// wrapping the list in a "markets" field. Any other shape yields an
// empty list rather than an error.
func decodeMarketList(body []byte) []RawMarket {
	var raws []RawMarket
	if err := json.Unmarshal(body, &raws); err == nil {
		return raws
	}

	var wrapped struct {
		Markets []RawMarket `json:"markets"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		return wrapped.Markets
	}
	return nil
}

// doGet sends a GET request, retrying transient failures with
// exponential backoff. Non-2xx responses surface the upstream status
// and body text for diagnostics.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if err := checkHTTPStatus(resp.StatusCode, b); err != nil {
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}

		body = b
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors, keeping
// the upstream status and body text in the message.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: HTTP 404: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUnauthorized, statusCode, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP 429: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, statusCode, bodyStr)
	}
}
