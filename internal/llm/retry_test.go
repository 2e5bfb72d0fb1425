package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

type flakyCompleter struct {
	failures int
	err      error
	calls    int
}

func (f *flakyCompleter) Complete(context.Context, string, string) (Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return Response{}, f.err
	}
	return Response{Content: "ok"}, nil
}

func noSleep(r Completer) {
	r.(*retrying).sleep = func(context.Context, time.Duration) error { return nil }
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	f := &flakyCompleter{failures: 2, err: &openai.APIError{HTTPStatusCode: 503, Message: "unavailable"}}
	c := WithRetry(f, 3, time.Millisecond)
	noSleep(c)

	resp, err := c.Complete(context.Background(), "", "p")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if resp.Content != "ok" || f.calls != 3 {
		t.Fatalf("unexpected result %q after %d calls", resp.Content, f.calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	f := &flakyCompleter{failures: 10, err: &openai.APIError{HTTPStatusCode: 429}}
	c := WithRetry(f, 2, time.Millisecond)
	noSleep(c)

	if _, err := c.Complete(context.Background(), "", "p"); err == nil {
		t.Fatal("expected error")
	}
	if f.calls != 3 {
		t.Fatalf("expected 1 call + 2 retries, got %d", f.calls)
	}
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	f := &flakyCompleter{failures: 10, err: &openai.APIError{HTTPStatusCode: 401}}
	c := WithRetry(f, 5, time.Millisecond)
	noSleep(c)

	if _, err := c.Complete(context.Background(), "", "p"); err == nil {
		t.Fatal("expected error")
	}
	if f.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", f.calls)
	}
}

func TestWithRetryDisabled(t *testing.T) {
	f := &flakyCompleter{}
	if c := WithRetry(f, 0, time.Second); c != Completer(f) {
		t.Fatal("expected the completer to be returned unchanged")
	}
}

func TestRetryDelayCapped(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{4, 3200 * time.Millisecond},
		{5, 5 * time.Second},
		{40, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := retryDelay(200*time.Millisecond, tt.attempt); got != tt.want {
			t.Errorf("attempt %d: got %v want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"rate limited", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server error", &openai.RequestError{HTTPStatusCode: 500, Err: errors.New("x")}, true},
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, false},
		{"overloaded", errors.New("529 overloaded_error"), true},
		{"plain", errors.New("invalid prompt"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
