package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultHTTPTimeout    = 300 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
)

// Option customizes a provider.
type Option func(*options)

type options struct {
	httpClient       *http.Client
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

func newOptions(timeoutSeconds, attempts int, opts []Option) options {
	timeout := defaultHTTPTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	o := options{
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: attempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: timeout}
	}
	return o
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the per-model attempt budget.
func WithRetryMaxAttempts(attempts int) Option {
	return func(o *options) {
		o.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(o *options) {
		o.retryBaseDelay = baseDelay
		o.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(o *options) {
		o.sleeper = sleeper
	}
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, summarizePayloadSnippet(e.Body))
}

type emptyContentError struct {
	Op           string
	FinishReason string
	BlockReason  string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, block_reason=%q)", e.Op, e.FinishReason, e.BlockReason)
}

// withRetry runs call until it succeeds, fails permanently, or the attempt
// budget is spent.
func (o options) withRetry(ctx context.Context, op string, call func() (string, error)) (string, error) {
	attempts := o.attempts()
	var lastErr error
	tried := 0

	for attempt := 1; attempt <= attempts; attempt++ {
		tried = attempt
		content, err := call()
		if err == nil {
			return content, nil
		}

		delay, retry := o.retryDelay(ctx, err, attempt, attempts)
		lastErr = err
		if !retry {
			if attempt == 1 {
				return "", err
			}
			break
		}
		logger().Debug("retrying model request", "op", op, "attempt", attempt, "delay", delay, "error", err)
		if err := o.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, tried, lastErr)
}

func (o options) attempts() int {
	if o.retryMaxAttempts <= 0 {
		return 1
	}
	return o.retryMaxAttempts
}

func (o options) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var emptyErr *emptyContentError
	if errors.As(err, &emptyErr) {
		return o.backoffDelay(attempt), true
	}

	if status, retryAfter, ok := statusOf(err); ok {
		if !isTransientStatus(status) {
			return 0, false
		}
		if retryAfter > 0 {
			return o.capDelay(retryAfter), true
		}
		return o.backoffDelay(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return o.backoffDelay(attempt), true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return o.backoffDelay(attempt), true
	}

	return 0, false
}

// statusOf extracts an HTTP status from either provider's error types.
func statusOf(err error) (int, time.Duration, bool) {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, statusErr.RetryAfter, true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return apiErr.HTTPStatusCode, 0, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return reqErr.HTTPStatusCode, 0, true
	}
	return 0, 0, false
}

func isTransientStatus(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status >= http.StatusInternalServerError
}

func (o options) backoffDelay(attempt int) time.Duration {
	base := o.retryBaseDelay
	maxDelay := o.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if base <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return o.capDelay(delay)
}

func (o options) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := o.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	return min(delay, maxDelay)
}

func (o options) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if o.sleeper != nil {
		o.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
