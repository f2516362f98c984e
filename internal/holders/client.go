package holders

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/keshon/snapshot-bot/internal/metrics"
	"github.com/keshon/snapshot-bot/pkg/ratelimit"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PageSize is the page size hint sent as `count`. The API caps pages at 100.
const PageSize = 100

// ErrResponseTooLarge is returned when a page body exceeds the configured cap.
var ErrResponseTooLarge = errors.New("holders api: response too large")

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	RateLimit       float64
	MaxRateLimit    float64
	MaxResponseSize int64
	HTTPClient      *http.Client
	Metrics         *metrics.Metrics
	Logger          *zap.Logger
}

// Client fetches holder pages. Safe for concurrent use.
type Client struct {
	baseURL         string
	apiKey          string
	maxResponseSize int64
	httpClient      *http.Client
	limiter         *ratelimit.AdaptiveLimiter
	breaker         *gobreaker.CircuitBreaker
	metrics         *metrics.Metrics
	log             *zap.Logger
}

// NewClient returns a Client for the listing API at opts.BaseURL.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.MaxRateLimit < opts.RateLimit {
		opts.MaxRateLimit = opts.RateLimit
	}
	if opts.MaxResponseSize <= 0 {
		opts.MaxResponseSize = 10 << 20
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		}
	}

	log := opts.Logger.Named("holders")
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "HoldersAPI",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			// A rejected id or key says nothing about the API's health.
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				return httpErr.Status < 500 && httpErr.Status != http.StatusTooManyRequests
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		apiKey:          opts.APIKey,
		maxResponseSize: opts.MaxResponseSize,
		httpClient:      httpClient,
		limiter: ratelimit.NewAdaptiveLimiter(
			rate.Limit(opts.RateLimit), 1, rate.Limit(opts.MaxRateLimit), 1, 0.5),
		breaker: breaker,
		metrics: opts.Metrics,
		log:     log,
	}
}

// FetchPage fetches one page of holders for policyID. An empty cursor asks for
// the first page.
func (c *Client) FetchPage(ctx context.Context, policyID, cursor string) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doFetch(ctx, policyID, cursor)
	})
	c.limiter.Observe(err)
	if err != nil {
		return nil, err
	}
	return result.(*Page), nil
}

func (c *Client) endpoint(policyID, cursor string) string {
	q := url.Values{}
	q.Set("count", strconv.Itoa(PageSize))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	return fmt.Sprintf("%s/policy/%s/addresses?%s", c.baseURL, url.PathEscape(policyID), q.Encode())
}

func (c *Client) doFetch(ctx context.Context, policyID, cursor string) (*Page, error) {
	requestID := newRequestID()
	endpoint := c.endpoint(policyID, cursor)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("HTTP request",
		zap.String("request_id", requestID),
		zap.String("policy_id", policyID),
		zap.Bool("first_page", cursor == ""))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPIResponse(0)
		return nil, fmt.Errorf("get %s: %w", policyID, err)
	}
	defer resp.Body.Close()

	c.metrics.RecordAPIResponse(resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.Int("status_code", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("HTTP response", fields...)
		return nil, &HTTPError{Status: resp.StatusCode, Body: body}
	}
	if int64(len(body)) > c.maxResponseSize {
		return nil, ErrResponseTooLarge
	}

	page, err := decodePage(body)
	if err != nil {
		c.log.Warn("HTTP response", append(fields, zap.Error(err))...)
		return nil, err
	}

	c.log.Debug("HTTP response", append(fields, zap.Int("holders", len(page.Holders)))...)
	return page, nil
}

func newRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
