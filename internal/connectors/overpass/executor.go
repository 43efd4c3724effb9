package overpass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/loamworks/gazetteer-cli/internal/logger"
)

// DefaultEndpoints are the public Overpass mirrors, tried in order.
var DefaultEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
	"https://overpass.nchc.org.tw/api/interpreter",
	"https://overpass.openstreetmap.ru/api/interpreter",
}

const (
	// DefaultRounds is how many times the full endpoint list is tried
	// before giving up.
	DefaultRounds = 6

	// DefaultBackoff is the sleep after the first fully-failed round.
	// It doubles each round up to DefaultMaxBackoff.
	DefaultBackoff = 2 * time.Second

	// DefaultMaxBackoff caps both the round backoff and any
	// server-provided Retry-After hint.
	DefaultMaxBackoff = 60 * time.Second

	// DefaultTimeout is the per-attempt HTTP timeout.
	DefaultTimeout = 120 * time.Second
)

// Config holds the executor's tuning knobs. The zero value of any
// field falls back to the package default.
type Config struct {
	// Endpoints is the ordered list of interchangeable mirrors.
	Endpoints []string

	// Rounds bounds the number of passes over the endpoint list.
	Rounds int

	// Backoff is the initial sleep after a fully-failed round.
	Backoff time.Duration

	// MaxBackoff caps the round backoff and Retry-After hints.
	MaxBackoff time.Duration

	// Timeout is the per-attempt HTTP timeout.
	Timeout time.Duration

	// UserAgent identifies the client to the mirrors. Public Overpass
	// instances block anonymous bulk callers.
	UserAgent string
}

func (c Config) withDefaults() Config {
	if len(c.Endpoints) == 0 {
		c.Endpoints = DefaultEndpoints
	}
	if c.Rounds <= 0 {
		c.Rounds = DefaultRounds
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Executor runs Overpass queries against a rotating endpoint list,
// tolerating rate limits and outages on individual mirrors. It holds
// no per-query state, so a single Executor is safe for concurrent use.
type Executor struct {
	cfg    Config
	client *http.Client
}

// NewExecutor creates an executor with the given configuration.
func NewExecutor(cfg Config) *Executor {
	cfg = cfg.withDefaults()
	return &Executor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Execute posts the query to the first endpoint that answers
// successfully and returns the raw JSON body. Per attempt: a 429
// honours a numeric Retry-After hint (capped) before moving on; a
// 502/503/504 moves on immediately; transport and parse failures are
// recorded and skipped. When every endpoint fails in a round, the
// executor sleeps with exponential backoff before the next round.
// After all rounds it fails with *ExhaustedError carrying the last
// observed error.
func (e *Executor) Execute(ctx context.Context, query string) ([]byte, error) {
	if len(e.cfg.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	var lastErr error
	backoff := e.cfg.Backoff

	for round := 1; round <= e.cfg.Rounds; round++ {
		progress := false

		for i, endpoint := range e.cfg.Endpoints {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			logger.Debug("overpass round %d, endpoint %d/%d: %s",
				round, i+1, len(e.cfg.Endpoints), endpoint)

			body, err := e.attempt(ctx, endpoint, query)
			if err == nil {
				return body, nil
			}

			progress = true
			lastErr = err
			logger.Debug("overpass attempt failed: %v", err)

			// Honour an explicit server wait hint, capped so one
			// hostile header cannot stall the whole batch.
			var rl *RateLimitError
			if errors.As(err, &rl) && rl.RetryAfter > 0 {
				wait := rl.RetryAfter
				if wait > e.cfg.MaxBackoff {
					wait = e.cfg.MaxBackoff
				}
				if err := sleepCtx(ctx, wait); err != nil {
					return nil, err
				}
			}
		}

		// Should not happen: every failed attempt sets progress. Abort
		// rather than spin if it somehow does.
		if !progress {
			if lastErr == nil {
				lastErr = ErrNoProgress
			}
			break
		}

		if round < e.cfg.Rounds {
			logger.Debug("overpass round %d failed everywhere, backing off %s", round, backoff)
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
			if backoff > e.cfg.MaxBackoff {
				backoff = e.cfg.MaxBackoff
			}
		}
	}

	return nil, &ExhaustedError{Rounds: e.cfg.Rounds, Last: lastErr}
}

// attempt posts the query to a single endpoint. Success requires a 200
// with a parseable JSON body; everything else is a typed error.
func (e *Executor) attempt(ctx context.Context, endpoint, query string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader("data="+url.QueryEscape(query)))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if e.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", e.cfg.UserAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{
			Endpoint:   endpoint,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return nil, &ServerError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("parse %s: malformed JSON body", endpoint)
	}
	return body, nil
}

// parseRetryAfter interprets a numeric Retry-After header value.
// Non-numeric forms (HTTP dates) are ignored.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

