package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/storefetch/internal/infrastructure/resilience"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned while the breaker is open
var ErrUnavailable = fmt.Errorf("external service unavailable: %w", resilience.ErrCircuitOpen)

// Options configures a Client
type Options struct {
	// Name labels the circuit breaker in logs and health output
	Name         string
	Timeout      time.Duration
	Retries      int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	// RPS limits outgoing requests per second; <= 0 is unlimited
	RPS       float64
	UserAgent string
	// Logger receives resty's retry warnings; nil discards them
	Logger *zap.Logger
}

// DefaultOptions mirrors the config defaults
func DefaultOptions() Options {
	return Options{
		Name:         "http-external",
		Timeout:      30 * time.Second,
		Retries:      3,
		RetryWait:    time.Second,
		RetryMaxWait: 30 * time.Second,
		UserAgent:    "storefetch/0.1",
	}
}

// Client wraps resty with rate limiting and a circuit breaker
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker
	Mu      sync.RWMutex
}

// NewClient creates an HTTP client for the resolver and package hosts
func NewClient(opts Options) *Client {
	// pooled transport from retryablehttp; retries are done by resty
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		AddRetryCondition(retryOnServerError).
		SetHeader("User-Agent", opts.UserAgent).
		SetLogger(newRestyLogger(opts.Logger))
	restyClient.SetTransport(retryClient.HTTPClient.Transport)

	if opts.Name == "" {
		opts.Name = "http-external"
	}
	breaker := resilience.New(opts.Name, resilience.Settings{
		MaxRequests:  5,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		IsSuccessful: resilience.IgnoreCancellation,
		ReadyToTrip: func(counts resilience.Counts) bool {
			// Trip if 10+ consecutive failures OR >70% failure rate with 20+ requests
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
	})

	return &Client{
		Resty:   restyClient,
		Limiter: newLimiter(opts.RPS),
		Breaker: breaker,
	}
}

// retryOnServerError replaces resty's default condition, so it keeps
// retrying transport errors too
func retryOnServerError(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// SetHeader sets a header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// SetTimeout bounds each request; zero leaves only the context deadline
func (c *Client) SetTimeout(duration time.Duration) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetTimeout(duration)
}

// SetRateLimit replaces the limiter; rps <= 0 removes the limit
func (c *Client) SetRateLimit(rps float64) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Limiter = newLimiter(rps)
}

// Request creates new request with rate limiting and circuit breaker protection
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if c.Breaker.State() == resilience.StateOpen {
		return nil, ErrUnavailable
	}

	c.Mu.RLock()
	limiter := c.Limiter
	c.Mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Resty.R().SetContext(ctx), nil
}

// ExecuteWithBreaker executes an HTTP operation with circuit breaker protection
func (c *Client) ExecuteWithBreaker(fn func() (*resty.Response, error)) (*resty.Response, error) {
	resp, err := resilience.Do(c.Breaker, fn)
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return nil, fmt.Errorf("external service unavailable: %w", err)
	}
	return resp, err
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.Breaker.State()
}

// BreakerCounts returns circuit breaker statistics
func (c *Client) BreakerCounts() resilience.Counts {
	return c.Breaker.Counts()
}
