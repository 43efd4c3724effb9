package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastConfig returns a config with sub-millisecond backoffs so retry
// paths run instantly in tests.
func fastConfig(endpoints ...string) Config {
	return Config{
		Endpoints:  endpoints,
		Rounds:     3,
		Backoff:    time.Microsecond,
		MaxBackoff: 10 * time.Microsecond,
		Timeout:    5 * time.Second,
		UserAgent:  "gazetteer-test/1.0",
	}
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func statusHandler(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}
}

func TestExecuteFirstEndpointSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		jsonHandler(`{"elements":[]}`)(w, r)
	}))
	defer srv.Close()

	e := NewExecutor(fastConfig(srv.URL))
	body, err := e.Execute(context.Background(), "[out:json];")
	require.NoError(t, err)
	assert.JSONEq(t, `{"elements":[]}`, string(body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExecuteRotatesPastRateLimit(t *testing.T) {
	// First endpoint always 429, second succeeds: the executor must
	// return the success without surfacing an error, and must not call
	// anything after the first success.
	limited := httptest.NewServer(statusHandler(http.StatusTooManyRequests))
	defer limited.Close()

	var okCalls int32
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&okCalls, 1)
		jsonHandler(`{"elements":[{"type":"relation","id":1}]}`)(w, r)
	}))
	defer ok.Close()

	var neverCalls int32
	never := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&neverCalls, 1)
		jsonHandler(`{}`)(w, r)
	}))
	defer never.Close()

	e := NewExecutor(fastConfig(limited.URL, ok.URL, never.URL))
	body, err := e.Execute(context.Background(), "[out:json];")
	require.NoError(t, err)
	assert.Contains(t, string(body), `"relation"`)
	assert.Equal(t, int32(1), atomic.LoadInt32(&okCalls))
	assert.Zero(t, atomic.LoadInt32(&neverCalls), "no endpoint is tried after a success")
}

func TestExecuteRotatesPastServerErrors(t *testing.T) {
	bad := httptest.NewServer(statusHandler(http.StatusServiceUnavailable))
	defer bad.Close()
	worse := httptest.NewServer(statusHandler(http.StatusBadGateway))
	defer worse.Close()
	ok := httptest.NewServer(jsonHandler(`{"elements":[]}`))
	defer ok.Close()

	e := NewExecutor(fastConfig(bad.URL, worse.URL, ok.URL))
	_, err := e.Execute(context.Background(), "[out:json];")
	assert.NoError(t, err)
}

func TestExecuteSuccessOnLaterRound(t *testing.T) {
	// The only endpoint fails twice, then succeeds: bounded retry
	// rounds must reach it.
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		jsonHandler(`{"elements":[]}`)(w, r)
	}))
	defer srv.Close()

	e := NewExecutor(fastConfig(srv.URL))
	_, err := e.Execute(context.Background(), "[out:json];")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestExecuteMalformedJSONTreatedAsFailure(t *testing.T) {
	garbled := httptest.NewServer(jsonHandler(`{"elements": [`))
	defer garbled.Close()
	ok := httptest.NewServer(jsonHandler(`{"elements":[]}`))
	defer ok.Close()

	e := NewExecutor(fastConfig(garbled.URL, ok.URL))
	body, err := e.Execute(context.Background(), "[out:json];")
	require.NoError(t, err)
	assert.JSONEq(t, `{"elements":[]}`, string(body))
}

func TestExecuteAllRateLimitedExhausts(t *testing.T) {
	// Every endpoint answers 429 on every round: after the configured
	// rounds the executor fails with ExhaustedError.
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	endpoints := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		srv := httptest.NewServer(handler)
		defer srv.Close()
		endpoints = append(endpoints, srv.URL)
	}

	cfg := fastConfig(endpoints...)
	e := NewExecutor(cfg)

	_, err := e.Execute(context.Background(), "[out:json];")
	require.Error(t, err)
	assert.True(t, IsExhausted(err))

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, cfg.Rounds, ex.Rounds)
	assert.True(t, IsRateLimited(ex.Last))

	// Bounded attempts: rounds x endpoints.
	assert.Equal(t, int32(cfg.Rounds*len(endpoints)), atomic.LoadInt32(&calls))
}

func TestExecuteHonoursRetryAfterCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// An absurd hint must be capped by MaxBackoff, not slept.
		w.Header().Set("Retry-After", "86400")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := fastConfig(srv.URL)
	e := NewExecutor(cfg)

	start := time.Now()
	_, err := e.Execute(context.Background(), "[out:json];")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExecuteAPIErrorRecordedAsLast(t *testing.T) {
	srv := httptest.NewServer(statusHandler(http.StatusBadRequest))
	defer srv.Close()

	e := NewExecutor(fastConfig(srv.URL))
	_, err := e.Execute(context.Background(), "[out:json];")
	require.Error(t, err)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	var apiErr *APIError
	require.ErrorAs(t, ex.Last, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestExecuteContextCancellation(t *testing.T) {
	srv := httptest.NewServer(statusHandler(http.StatusTooManyRequests))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExecutor(fastConfig(srv.URL))
	_, err := e.Execute(ctx, "[out:json];")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteNoEndpoints(t *testing.T) {
	e := &Executor{cfg: Config{}}
	_, err := e.Execute(context.Background(), "[out:json];")
	assert.ErrorIs(t, err, ErrNoEndpoints)
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"30", 30 * time.Second},
		{" 5 ", 5 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2026 07:28:00 GMT", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseRetryAfter(tt.in), "Retry-After %q", tt.in)
	}
}

func TestRateLimitErrorMessage(t *testing.T) {
	err := &RateLimitError{Endpoint: "https://example.org", RetryAfter: 10 * time.Second}
	assert.Contains(t, err.Error(), "retry after 10s")

	bare := &RateLimitError{Endpoint: "https://example.org"}
	assert.NotContains(t, bare.Error(), "retry after")
}
