package wikipedia

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
	"github.com/loamworks/gazetteer-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Enricher = (*Client)(nil)

const (
	// DefaultBaseURL is the English Wikipedia API endpoint.
	DefaultBaseURL = "https://en.wikipedia.org/w/api.php"

	// DefaultInterval spaces requests out. Enrichment fires once per
	// child place, so 250ms keeps a large run polite without
	// dominating its wall time.
	DefaultInterval = 250 * time.Millisecond

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 15 * time.Second
)

// Config holds the client's settings. Zero-value fields fall back to
// the package defaults.
type Config struct {
	BaseURL   string
	UserAgent string
	Interval  time.Duration
	Timeout   time.Duration
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

// Client resolves place names to Wikipedia article titles and URLs.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Wikipedia opensearch client.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.Interval), 1),
	}
}

// Lookup returns the best-matching article title and URL for a place,
// searched as "name, parent" to disambiguate common names. Empty
// strings mean no match or a failed lookup.
func (c *Client) Lookup(ctx context.Context, name, parent string) (title, pageURL string) {
	if name == "" {
		return "", ""
	}
	search := name
	if parent != "" {
		search = name + ", " + parent
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", ""
	}

	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", search)
	params.Set("limit", "1")
	params.Set("namespace", "0")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", ""
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("wikipedia lookup %q failed: %v", search, err)
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("wikipedia lookup %q: status %d", search, resp.StatusCode)
		return "", ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || !gjson.ValidBytes(body) {
		return "", ""
	}

	// Opensearch replies with a positional array:
	// [query, [titles], [descriptions], [urls]].
	parsed := gjson.ParseBytes(body)
	return parsed.Get("1.0").String(), parsed.Get("3.0").String()
}
