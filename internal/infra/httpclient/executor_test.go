package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func get(t *testing.T, exec *Executor, url string) (Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	return exec.Do(context.Background(), req)
}

func TestExecutorTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := get(t, NewExecutor(WithTimeout(20*time.Millisecond)), server.URL)
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if resp.Duration <= 0 {
		t.Fatalf("expected duration to be set")
	}
}

func TestExecutorTruncatesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 2048)))
	}))
	defer server.Close()

	resp, err := get(t, NewExecutor(WithMaxBodyBytes(1024)), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Truncated || len(resp.Body) != 1024 {
		t.Fatalf("expected truncated 1024 bytes, got truncated=%v len=%d", resp.Truncated, len(resp.Body))
	}
}

func TestExecutorReportsStatusAndRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	resp, err := get(t, NewExecutor(), server.URL)
	if err != nil {
		t.Fatalf("non-2xx must not be an error: %v", err)
	}
	if resp.Status != http.StatusTooManyRequests || resp.RetryAfter != 2*time.Second {
		t.Fatalf("got status=%d retryAfter=%s", resp.Status, resp.RetryAfter)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := map[string]time.Duration{
		"":                              0,
		"3":                             3 * time.Second,
		"-1":                            0,
		"soon":                          0,
		"Sun, 01 Mar 2026 12:00:05 GMT": 5 * time.Second,
		"Sun, 01 Mar 2026 11:00:00 GMT": 0,
	}
	for in, want := range cases {
		if got := parseRetryAfter(in, now); got != want {
			t.Errorf("parseRetryAfter(%q)=%s want %s", in, got, want)
		}
	}
}

func TestClientSetsDefaultHeaders(t *testing.T) {
	var ua, accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua, accept = r.Header.Get("User-Agent"), r.Header.Get("Accept")
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.UserAgent = "kcatflux-test"
	exec := NewExecutor(WithClient(New(cfg)))

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	req.Header.Set("Accept", "text/xml")
	if _, err := exec.Do(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ua != "kcatflux-test" {
		t.Fatalf("expected user agent kcatflux-test, got %q", ua)
	}
	if accept != "text/xml" {
		t.Fatalf("request Accept header must win, got %q", accept)
	}
}
