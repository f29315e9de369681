// Package rates fetches exchange-rate quotes from an external provider.
// Quotes are display-only: stored amounts are never converted, reports
// just show an approximate total in a reference currency. The provider
// sits behind a circuit breaker and a short-lived cache, and any failure
// degrades the report to unconverted figures.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/cache"
)

// ErrUnavailable is returned when the provider cannot serve a quote
// (network failure, open breaker, unknown currency pair).
var ErrUnavailable = errors.New("exchange rate unavailable")

// Quote is one cached exchange rate.
type Quote struct {
	Base      string
	Target    string
	Rate      decimal.Decimal
	FetchedAt time.Time
}

// Client fetches quotes with caching and circuit breaking.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	cache   *cache.InMemory[Quote]
	log     *zap.Logger
}

// NewClient creates a rates client for the given provider base URL.
// Quotes are cached for ttl.
func NewClient(baseURL string, ttl time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		breaker: newBreaker("rates-provider"),
		cache:   cache.New[Quote](ttl),
		log:     log,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // half-open: allow 3 requests
		Interval:    30 * time.Second, // closed: reset counters every 30s
		Timeout:     10 * time.Second, // open -> half-open after 10s
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}

// latestResponse is the provider's /latest payload. Rates arrive as
// strings so no precision is lost in transit.
type latestResponse struct {
	Base  string            `json:"base"`
	Rates map[string]string `json:"rates"`
}

// Rate returns the multiplier converting one unit of base into target.
// Same-currency requests short-circuit to 1.
func (c *Client) Rate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	if base == target {
		return decimal.NewFromInt(1), nil
	}

	key := base + ":" + target
	if q, ok := c.cache.Get(key); ok {
		return q.Rate, nil
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchLatest(ctx, base)
	})
	if err != nil {
		c.log.Warn("rate fetch failed",
			zap.String("base", base),
			zap.String("target", target),
			zap.Error(err))
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp := result.(*latestResponse)
	now := time.Now()
	for cur, rateStr := range resp.Rates {
		rate, err := decimal.NewFromString(rateStr)
		if err != nil {
			c.log.Warn("provider sent unparsable rate",
				zap.String("currency", cur),
				zap.String("rate", rateStr))
			continue
		}
		c.cache.Set(base+":"+cur, Quote{Base: base, Target: cur, Rate: rate, FetchedAt: now})
	}

	q, ok := c.cache.Get(key)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: no quote for %s", ErrUnavailable, key)
	}
	return q.Rate, nil
}

func (c *Client) fetchLatest(ctx context.Context, base string) (*latestResponse, error) {
	url := fmt.Sprintf("%s/latest?base=%s", c.baseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	return &payload, nil
}
