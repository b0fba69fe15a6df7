package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	pkgerrs "github.com/jamesprial/go-pymments/pkg/errors"
)

// Client performs requests against the comment service endpoint.
// It implements the transport contract: one verb plus flat parameters in,
// one JSON value out.
type Client struct {
	client    *http.Client
	BaseURL   *url.URL
	UserAgent string
	logger    *slog.Logger
	metrics   *Metrics

	limiter        *rate.Limiter
	mu             sync.Mutex
	forceWaitUntil time.Time
}

// RateLimitConfig controls how requests are throttled before reaching the service.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 600 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 20 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 600
	DefaultRateLimitBurst    = 20
	SecondsPerMinute         = 60.0
	ParseFloatBitSize        = 64

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 10 << 20
	// maxErrorBodyBytes bounds how much of an error body ends up in APIError.
	maxErrorBodyBytes = 512
)

// NewClient returns a new comment service client.
// If a nil httpClient is provided, http.DefaultClient will be used.
func NewClient(httpClient *http.Client, baseURL string, userAgent string, rateCfg *RateLimitConfig, logger *slog.Logger, metrics *Metrics) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: "scheme must be http or https"}
	}

	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}

	return &Client{
		client:    httpClient,
		BaseURL:   parsedURL,
		UserAgent: userAgent,
		logger:    logger,
		metrics:   metrics,
		limiter:   buildLimiter(*rateCfg),
	}, nil
}

// NewRequest builds the HTTP request for one service call. GET carries the
// parameters in the query string, POST as a urlencoded form body.
func (c *Client) NewRequest(ctx context.Context, method string, params url.Values) (*http.Request, error) {
	u := *c.BaseURL

	var body io.Reader
	switch method {
	case http.MethodGet:
		u.RawQuery = params.Encode()
	case http.MethodPost:
		body = strings.NewReader(params.Encode())
	default:
		return nil, &pkgerrs.RequestError{Operation: params.Get("op"), Message: "unsupported method " + method}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: params.Get("op"), URL: u.String(), Err: err}
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	return req, nil
}

// Request sends one service call and returns the raw JSON response. Every
// failure is returned; a non-success status becomes an APIError.
func (c *Client) Request(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	op := params.Get("op")
	requestID := ulid.Make().String()
	start := time.Now()

	req, err := c.NewRequest(ctx, method, params)
	if err != nil {
		return nil, err
	}

	if err := c.waitForRateLimit(ctx); err != nil {
		c.metrics.observe(op, method, "wait_error", time.Since(start))
		return nil, &pkgerrs.RequestError{Operation: op, URL: c.BaseURL.String(), Err: err}
	}

	c.logger.Debug("pymments request", "request_id", requestID, "op", op, "method", method)

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.observe(op, method, "transport_error", time.Since(start))
		c.logger.Debug("pymments request failed", "request_id", requestID, "op", op, "error", err)
		return nil, &pkgerrs.RequestError{Operation: op, URL: c.BaseURL.String(), Err: err}
	}
	defer resp.Body.Close()

	c.applyRateHeaders(resp)
	c.metrics.observe(op, method, strconv.Itoa(resp.StatusCode), time.Since(start))
	c.logger.Debug("pymments response",
		"request_id", requestID,
		"op", op,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &pkgerrs.APIError{Operation: op, StatusCode: resp.StatusCode, Message: msg}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: op, URL: c.BaseURL.String(), Message: "failed to read response body", Err: err}
	}
	if !json.Valid(data) {
		return nil, &pkgerrs.ParseError{Operation: op, Message: "response is not valid JSON"}
	}

	return json.RawMessage(data), nil
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if err := c.waitForForcedDelay(ctx); err != nil {
		return err
	}

	if c.limiter == nil {
		return nil
	}

	return c.limiter.Wait(ctx)
}

func (c *Client) waitForForcedDelay(ctx context.Context) error {
	for {
		c.mu.Lock()
		waitUntil := c.forceWaitUntil
		c.mu.Unlock()

		if waitUntil.IsZero() {
			return nil
		}

		now := time.Now()
		if !now.Before(waitUntil) {
			c.clearForcedDelay(waitUntil)
			return nil
		}

		timer := time.NewTimer(waitUntil.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			c.clearForcedDelay(waitUntil)
		}
	}
}

func (c *Client) clearForcedDelay(previous time.Time) {
	c.mu.Lock()
	if previous.Equal(c.forceWaitUntil) {
		c.forceWaitUntil = time.Time{}
	}
	c.mu.Unlock()
}

// applyRateHeaders honors a Retry-After header by holding back later requests.
func (c *Client) applyRateHeaders(resp *http.Response) {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return
	}
	if seconds, err := strconv.ParseFloat(retryAfter, ParseFloatBitSize); err == nil && seconds > 0 {
		c.deferRequests(time.Duration(seconds * float64(time.Second)))
	}
}

func (c *Client) deferRequests(d time.Duration) {
	if d <= 0 {
		return
	}

	until := time.Now().Add(d)

	c.mu.Lock()
	if until.After(c.forceWaitUntil) {
		c.forceWaitUntil = until
	}
	c.mu.Unlock()
}
