package claude

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "type and message",
			err:  &APIError{Status: "429 Too Many Requests", Type: "rate_limit_error", Message: "slow down"},
			want: "claude: api error (429 Too Many Requests): rate_limit_error: slow down",
		},
		{
			name: "message only",
			err:  &APIError{Status: "500 Internal Server Error", Message: "boom"},
			want: "claude: api error (500 Internal Server Error): boom",
		},
		{
			name: "status only",
			err:  &APIError{Status: "502 Bad Gateway"},
			want: "claude: api error (502 Bad Gateway)",
		},
		{
			name: "body fallback",
			err:  &APIError{Status: "503 Service Unavailable", Body: []byte(" overloaded ")},
			want: "claude: api error (503 Service Unavailable): overloaded",
		},
	}

	for _, tc := range tests {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limited", err: &APIError{StatusCode: http.StatusTooManyRequests}, want: true},
		{name: "server error", err: &APIError{StatusCode: 503}, want: true},
		{name: "bad request", err: &APIError{StatusCode: 400}, want: false},
		{name: "auth error", err: &APIError{StatusCode: 401}, want: false},
		{name: "plain error", err: errors.New("nope"), want: false},
	}

	for _, tc := range tests {
		if got := shouldRetry(tc.err); got != tc.want {
			t.Fatalf("%s: shouldRetry=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestRetryBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	if got := retryBackoff(base, 0); got != base {
		t.Fatalf("attempt 0: got %v want %v", got, base)
	}
	if got := retryBackoff(base, 2); got != 4*base {
		t.Fatalf("attempt 2: got %v want %v", got, 4*base)
	}
	if got := retryBackoff(0, 1); got != 0 {
		t.Fatalf("zero base: got %v want 0", got)
	}
}

func TestClampRetryMax(t *testing.T) {
	if got := clampRetryMax(-1); got != 0 {
		t.Fatalf("negative: got %d want 0", got)
	}
	if got := clampRetryMax(10); got != maxRetryMax {
		t.Fatalf("over max: got %d want %d", got, maxRetryMax)
	}
	if got := clampRetryMax(2); got != 2 {
		t.Fatalf("in range: got %d want 2", got)
	}
}

func TestSleepWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepWithContext(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSDKBaseURL(t *testing.T) {
	if got := sdkBaseURL("https://api.anthropic.com/v1/"); got != "https://api.anthropic.com" {
		t.Fatalf("got %q", got)
	}
	if got := sdkBaseURL("https://proxy.internal"); got != "https://proxy.internal" {
		t.Fatalf("got %q", got)
	}
}

func TestNewClient_Options(t *testing.T) {
	t.Setenv("ANTHROPIC_BASE_URL", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_AUTH_TOKEN", "")

	c := NewClient("key", WithModel("claude-test"), WithBaseURL("https://example.com/v1/"), WithRetry(1))
	if c.model != "claude-test" {
		t.Fatalf("model: got %q", c.model)
	}
	if c.baseURL != "https://example.com/v1" {
		t.Fatalf("baseURL: got %q", c.baseURL)
	}
	if c.retryMax != 1 {
		t.Fatalf("retryMax: got %d", c.retryMax)
	}
}
