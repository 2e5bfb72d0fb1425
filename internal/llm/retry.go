package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const maxRetryDelay = 5 * time.Second

type retrying struct {
	next       Completer
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps c so that retryable failures are attempted up to
// maxRetries more times with exponential backoff capped at 5s. A
// non-positive maxRetries returns c unchanged.
func WithRetry(c Completer, maxRetries int, baseDelay time.Duration) Completer {
	if maxRetries <= 0 {
		return c
	}
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	return &retrying{next: c, maxRetries: maxRetries, baseDelay: baseDelay, sleep: sleepCtx}
}

func (r *retrying) Complete(ctx context.Context, systemPrompt, prompt string) (Response, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		resp, err := r.next.Complete(ctx, systemPrompt, prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == r.maxRetries || !IsRetryable(err) || ctx.Err() != nil {
			break
		}
		if err := r.sleep(ctx, retryDelay(r.baseDelay, attempt)); err != nil {
			break
		}
	}
	return Response{}, lastErr
}

func retryDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		return maxRetryDelay
	}
	d := base << attempt
	if d > maxRetryDelay || d <= 0 {
		d = maxRetryDelay
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsRetryable reports whether err looks transient: rate limiting, server
// errors, overload or network timeouts.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "529") ||
		strings.Contains(errStr, "overloaded") ||
		strings.Contains(errStr, "Overloaded") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "502")
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
