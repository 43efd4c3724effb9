package nominatim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
	"github.com/loamworks/gazetteer-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.CandidateSearcher = (*Client)(nil)

const (
	// DefaultBaseURL is the public Nominatim search endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

	// DefaultInterval spaces requests out. The public instance asks
	// for at most one request per second; 1.1s leaves headroom.
	DefaultInterval = 1100 * time.Millisecond

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// maxAttempts bounds the retries for a single search.
	maxAttempts = 3
)

// Config holds the client's settings. Zero-value fields fall back to
// the package defaults.
type Config struct {
	// BaseURL is the search endpoint.
	BaseURL string

	// UserAgent identifies the client. The public instance rejects
	// anonymous callers.
	UserAgent string

	// CountryCodes restricts results to a jurisdiction, e.g. "gb".
	// Empty disables the restriction.
	CountryCodes string

	// Interval is the minimum spacing between requests.
	Interval time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Client queries Nominatim and maps raw results into candidates.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cache   driven.ResponseCache
}

// NewClient creates a Nominatim client. cache may be nil to disable
// caching (tests).
func NewClient(cfg Config, cache driven.ResponseCache) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.Interval), 1),
		cache:   cache,
	}
}

// Search returns up to limit candidates for the town. The response
// cache is checked before the network; individual malformed records
// are skipped rather than failing the search.
func (c *Client) Search(ctx context.Context, town domain.Town, limit int) ([]domain.Candidate, error) {
	query := town.QueryString()
	if query == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 10
	}

	key := "nominatim:" + domain.Slug(query)
	if c.cache != nil {
		if body, err := c.cache.Get(ctx, key); err == nil {
			logger.Debug("nominatim cache hit: %s", key)
			return parseCandidates(body), nil
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			return nil, fmt.Errorf("cache get %s: %w", key, err)
		}
	}

	body, err := retry.DoWithData(
		func() ([]byte, error) { return c.fetch(ctx, query, limit) },
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("nominatim search %q: %w", query, err)
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, body); err != nil {
			logger.Warn("nominatim cache put %s failed: %v", key, err)
		}
	}

	return parseCandidates(body), nil
}

// fetch performs one rate-limited request.
func (c *Client) fetch(ctx context.Context, query string, limit int) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(limit))
	if c.cfg.CountryCodes != "" {
		params.Set("countrycodes", c.cfg.CountryCodes)
	}

	reqURL := c.cfg.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, URL: reqURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed JSON body")
	}
	return body, nil
}

// parseCandidates maps the raw jsonv2 array into candidates. Nominatim
// encodes lat/lon as strings and ids as numbers; gjson coerces both
// forms. Records without a type or positive id are skipped.
func parseCandidates(body []byte) []domain.Candidate {
	items := gjson.ParseBytes(body).Array()
	candidates := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		osmType := item.Get("osm_type").String()
		osmID := item.Get("osm_id").Int()
		if osmType == "" || osmID <= 0 {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			DisplayName: item.Get("display_name").String(),
			OSMType:     osmType,
			OSMID:       osmID,
			Class:       item.Get("class").String(),
			Type:        item.Get("type").String(),
			Lat:         item.Get("lat").Float(),
			Lon:         item.Get("lon").Float(),
		})
	}
	return candidates
}
