// Package delivery performs outbound webhook HTTP calls with retry, backoff
// and permanent-vs-transient failure classification.
//
// Classification follows the status code: [200,400) is success, [400,500) is
// a permanent failure returned after a single attempt, and [500,600) along
// with timeouts and connection-level errors are transient failures retried
// up to the configured attempt limit.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"hook-engine/internal/circuitbreaker"
	"hook-engine/internal/common/errors"
	"hook-engine/internal/common/logging"
	"hook-engine/internal/common/utils"
)

// defaultUserAgent identifies the engine on outbound requests. Callers can
// override it through request headers.
const defaultUserAgent = "hook-engine/1.0"

// maxResponseBytes bounds how much of a destination's response is retained.
const maxResponseBytes = 64 * 1024

var supportedMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// Defaults are the client-level delivery settings, overridable per request.
type Defaults struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultDefaults returns the stock delivery settings: 30 second attempts,
// 3 total attempts, 2 seconds between them.
func DefaultDefaults() Defaults {
	return Defaults{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// Request describes one webhook delivery.
type Request struct {
	URL     string
	Method  string // POST, PUT or PATCH; defaults to POST
	Payload interface{}
	Headers map[string]string

	// Zero values fall back to the client defaults
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Result is the outcome of a delivery. Ordinary network and HTTP failures
// are represented here, never raised.
type Result struct {
	Success      bool
	StatusCode   int
	ResponseBody string
	Attempts     int
	Duration     time.Duration
	Error        string
}

// Client delivers webhooks. One circuit breaker is kept per destination
// host so a dead destination cannot burn retries for every hook pointed at
// it. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	defaults   Defaults
	logger     logging.Logger

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.Breaker
}

// NewClient creates a webhook delivery client.
func NewClient(defaults Defaults, logger logging.Logger) *Client {
	if defaults.Timeout <= 0 {
		defaults.Timeout = DefaultDefaults().Timeout
	}
	if defaults.MaxRetries < 1 {
		defaults.MaxRetries = DefaultDefaults().MaxRetries
	}
	if defaults.RetryDelay <= 0 {
		defaults.RetryDelay = DefaultDefaults().RetryDelay
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		defaults:   defaults,
		logger:     logger,
		breakers:   make(map[string]*circuitbreaker.Breaker),
	}
}

// Send delivers one webhook, retrying transient failures. The per-attempt
// timeout bounds the worst-case stall; there is no whole-batch cancellation
// beyond the caller's context.
func (c *Client) Send(ctx context.Context, req Request) Result {
	start := time.Now()

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	if !supportedMethods[method] {
		return Result{
			Success:  false,
			Duration: time.Since(start),
			Error:    fmt.Sprintf("unsupported HTTP method %q (only POST, PUT and PATCH are allowed)", req.Method),
		}
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Result{
			Success:  false,
			Duration: time.Since(start),
			Error:    fmt.Sprintf("invalid webhook URL %q", req.URL),
		}
	}

	body, err := json.Marshal(req.Payload)
	if err != nil {
		return Result{
			Success:  false,
			Duration: time.Since(start),
			Error:    fmt.Sprintf("failed to encode payload: %v", err),
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.defaults.Timeout
	}
	maxRetries := req.MaxRetries
	if maxRetries < 1 {
		maxRetries = c.defaults.MaxRetries
	}
	retryDelay := req.RetryDelay
	if retryDelay <= 0 {
		retryDelay = c.defaults.RetryDelay
	}

	breaker := c.breakerFor(parsed.Host)

	result := Result{}
	retryConfig := utils.RetryConfig{
		MaxAttempts:     maxRetries,
		InitialDelay:    retryDelay,
		MaxDelay:        retryDelay,
		BackoffFactor:   1.0,
		RetryableErrors: errors.IsTransient,
	}

	retryErr := utils.RetryWithBackoff(ctx, retryConfig, func() error {
		result.Attempts++
		return breaker.Execute(ctx, func() error {
			return c.attempt(ctx, method, req.URL, body, req.Headers, timeout, &result)
		})
	})

	result.Duration = time.Since(start)

	if retryErr != nil {
		result.Success = false
		result.Error = retryErr.Error()
		c.logger.Warn("Webhook delivery failed",
			logging.String("url", req.URL),
			logging.String("method", method),
			logging.Int("attempts", result.Attempts),
			logging.Int("status", result.StatusCode),
			logging.String("error", result.Error))
		return result
	}

	result.Success = true
	c.logger.Debug("Webhook delivered",
		logging.String("url", req.URL),
		logging.Int("status", result.StatusCode),
		logging.Int("attempts", result.Attempts),
		logging.Duration("duration", result.Duration))
	return result
}

// attempt executes a single HTTP attempt and records the observed status and
// body into result. The returned error carries the classification.
func (c *Client) attempt(ctx context.Context, method, rawURL string, body []byte, headers map[string]string, timeout time.Duration, result *Result) error {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return errors.ValidationError(fmt.Sprintf("failed to build request: %v", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", defaultUserAgent)
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded {
			return errors.TimeoutError(fmt.Sprintf("webhook delivery to %s", rawURL))
		}
		return errors.ConnectionError("webhook request failed", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		responseBody = nil
	}

	result.StatusCode = resp.StatusCode
	result.ResponseBody = string(responseBody)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return errors.ValidationError(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(responseBody), 256)))
	default:
		return errors.InternalError(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(responseBody), 256)), nil)
	}
}

func (c *Client) breakerFor(host string) *circuitbreaker.Breaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if breaker, ok := c.breakers[host]; ok {
		return breaker
	}
	breaker := circuitbreaker.New(host, circuitbreaker.WebhookConfig, c.logger)
	c.breakers[host] = breaker
	return breaker
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
