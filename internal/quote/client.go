// Package quote fetches the live price of the tracked asset.
// One GET, short timeout, no retry.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"athena/internal/logging"
)

// slowFetch is the duration above which a fetch is logged as slow.
const slowFetch = 2 * time.Second

// ErrUnavailable is returned by Probe when no quote could be fetched.
var ErrUnavailable = errors.New("quote endpoint unavailable")

// Quote is a price and its percent change.
type Quote struct {
	Price         float64
	PercentChange float64
}

// Config holds configuration for the quote client.
type Config struct {
	URL       string
	Pair      string
	Timeout   time.Duration
	UserAgent string
}

// Client fetches quotes.
type Client struct {
	url        string
	pair       string
	userAgent  string
	httpClient *http.Client
}

// pairQuote is the per-pair object. Numbers arrive as strings.
type pairQuote struct {
	Bid       string `json:"bid"`
	PctChange string `json:"pctChange"`
}

// NewClient creates a quote client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:        cfg.URL,
		pair:       cfg.Pair,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the current quote, or false on any transport or decode
// failure. An unparsable percent change degrades to 0; an unparsable or
// non-positive or non-finite price is a failure because callers divide by it.
func (c *Client) Fetch(ctx context.Context) (Quote, bool) {
	timer := logging.StartTimer(logging.CategoryQuote, "quote fetch")
	defer timer.StopWithThreshold(slowFetch)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		logging.QuoteWarn("Fetch: build request: %v", err)
		return Quote{}, false
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.QuoteWarn("Fetch: request failed: %v", err)
		return Quote{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.QuoteWarn("Fetch: status %d", resp.StatusCode)
		return Quote{}, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		logging.QuoteWarn("Fetch: read body: %v", err)
		return Quote{}, false
	}

	var payload map[string]pairQuote
	if err := json.Unmarshal(body, &payload); err != nil {
		logging.QuoteWarn("Fetch: decode: %v", err)
		return Quote{}, false
	}
	pq, ok := payload[c.pair]
	if !ok {
		logging.QuoteWarn("Fetch: pair %s missing from response", c.pair)
		return Quote{}, false
	}

	price, err := strconv.ParseFloat(pq.Bid, 64)
	if err != nil || !finitePositive(price) {
		logging.QuoteWarn("Fetch: bad bid %q", pq.Bid)
		return Quote{}, false
	}
	change, err := strconv.ParseFloat(pq.PctChange, 64)
	if err != nil || math.IsNaN(change) || math.IsInf(change, 0) {
		change = 0
	}

	logging.Quote("Fetch: %s bid=%.2f change=%.2f%%", c.pair, price, change)
	return Quote{Price: price, PercentChange: change}, true
}

// Probe reports whether the quote endpoint is reachable and decodable.
func (c *Client) Probe(ctx context.Context) error {
	if _, ok := c.Fetch(ctx); !ok {
		return ErrUnavailable
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
