package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/metrics"
)

const userAgent = "BookMemo/1.0 (https://github.com/mrlokans/bookmemo)"

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// Timeouts bound each phase of an outbound request.
type Timeouts struct {
	Connect time.Duration
	Write   time.Duration
	Read    time.Duration
}

// DefaultTimeouts: 10s connect, 10s write, 30s read.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Connect: 10 * time.Second,
		Write:   10 * time.Second,
		Read:    30 * time.Second,
	}
}

// NewHTTPClient builds an http.Client whose dial, TLS handshake and
// response-header waits are bounded by t, with an overall cap of their sum.
func NewHTTPClient(t Timeouts) *http.Client {
	dialer := &net.Dialer{Timeout: t.Connect}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   t.Connect,
		ResponseHeaderTimeout: t.Read,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   4,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   t.Connect + t.Write + t.Read,
	}
}

// NewBreaker returns a circuit breaker that opens once at least five calls
// were made in the interval and 80% of them failed.
func NewBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// A 404 is a valid answer from a healthy provider.
			return err == nil || errors.Is(err, apperrors.ErrNotFound)
		},
	})
}

// JSONClient performs rate-limited, circuit-broken GET requests that decode
// JSON bodies. One JSONClient is shared by all calls to a provider.
type JSONClient struct {
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.Collector
}

// NewJSONClient creates a client for the named provider allowing rps requests
// per second. rps <= 0 disables rate limiting.
func NewJSONClient(name string, httpClient *http.Client, rps float64, logger *zap.Logger, collector *metrics.Collector) *JSONClient {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONClient{
		name:       name,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    NewBreaker(name, logger),
		metrics:    collector,
	}
}

// Name returns the provider name used in errors and metrics.
func (c *JSONClient) Name() string {
	return c.name
}

// GetJSON fetches rawURL and decodes the body into out. A 404 yields
// apperrors.ErrNotFound; any other failure is a *apperrors.TransportError.
func (c *JSONClient) GetJSON(ctx context.Context, operation, rawURL string, out any) error {
	started := time.Now()
	err := c.getJSON(ctx, rawURL, out)
	c.metrics.ObserveProvider(c.name, operation, started, err)
	return err
}

func (c *JSONClient) getJSON(ctx context.Context, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &apperrors.TransportError{Service: c.name, Message: "rate limiter", Err: err}
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, rawURL, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &apperrors.TransportError{Service: c.name, Message: "temporarily unavailable", Err: err}
	}
	return err
}

func (c *JSONClient) do(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &apperrors.TransportError{Service: c.name, Message: "create request", Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperrors.TransportError{Service: c.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperrors.TransportError{
			Service:    c.name,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperrors.TransportError{
			Service:    c.name,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed response: %v", err),
			Err:        err,
		}
	}
	return nil
}
