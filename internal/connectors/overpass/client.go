package overpass

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
	"github.com/loamworks/gazetteer-cli/internal/logger"
)

// Ensure Client implements the geodata ports.
var (
	_ driven.BoundaryFinder = (*Client)(nil)
	_ driven.PlaceLister    = (*Client)(nil)
)

// DefaultAdminLevels are the admin levels that count as town-scale
// boundaries: unitary authorities are usually 6, metropolitan
// boroughs usually 8.
var DefaultAdminLevels = []string{"6", "8"}

// Client implements the boundary fallback search and child-place
// enumeration on top of the mirror-rotating Executor. Every distinct
// query is cached by normalized key, and an in-flight guard ensures
// at most one fetch per key when callers run concurrently.
type Client struct {
	exec        *Executor
	cache       driven.ResponseCache
	countryISO  string
	adminLevels []string
	placeKinds  []string

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// NewClient creates an Overpass client. cache may be nil to disable
// caching (tests). Empty adminLevels and placeKinds fall back to the
// package defaults.
func NewClient(exec *Executor, cache driven.ResponseCache, countryISO string, adminLevels, placeKinds []string) *Client {
	if len(adminLevels) == 0 {
		adminLevels = DefaultAdminLevels
	}
	if len(placeKinds) == 0 {
		placeKinds = domain.DefaultPlaceKinds
	}
	return &Client{
		exec:        exec,
		cache:       cache,
		countryISO:  countryISO,
		adminLevels: adminLevels,
		placeKinds:  placeKinds,
		inflight:    make(map[string]*sync.Mutex),
	}
}

// FindAdminBoundaries searches administrative boundary relations whose
// name matches the town name or a known naming variant.
func (c *Client) FindAdminBoundaries(ctx context.Context, name string) ([]driven.BoundaryMatch, error) {
	query := BuildBoundaryQuery(name, c.countryISO, c.adminLevels)
	key := "overpass:resolve_admin:" + domain.Slug(name)

	body, err := c.fetch(ctx, key, query)
	if err != nil {
		return nil, err
	}
	return ParseBoundaryMatches(body)
}

// PlacesInBoundary enumerates place-tagged elements inside the
// relation's area.
func (c *Client) PlacesInBoundary(ctx context.Context, relationID int64) ([]domain.ChildPlace, error) {
	query := BuildPlacesQuery(relationID, c.placeKinds)
	key := "overpass:relation:" + strconv.FormatInt(relationID, 10)

	body, err := c.fetch(ctx, key, query)
	if err != nil {
		return nil, err
	}
	return ParsePlaces(body)
}

// fetch returns the cached body for key, or executes the query and
// populates the cache. The per-key lock makes concurrent callers for
// the same key wait for the first fetch instead of issuing duplicates.
func (c *Client) fetch(ctx context.Context, key, query string) ([]byte, error) {
	if c.cache == nil {
		return c.exec.Execute(ctx, query)
	}

	unlock := c.lockKey(key)
	defer unlock()

	body, err := c.cache.Get(ctx, key)
	if err == nil {
		logger.Debug("overpass cache hit: %s", key)
		return body, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	body, err = c.exec.Execute(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, body); err != nil {
		// A failed cache write costs a refetch later, nothing more.
		logger.Warn("overpass cache put %s failed: %v", key, err)
	}
	return body, nil
}

// lockKey acquires the per-key in-flight lock, creating it on first
// use. The returned func releases it.
func (c *Client) lockKey(key string) func() {
	c.mu.Lock()
	m, ok := c.inflight[key]
	if !ok {
		m = &sync.Mutex{}
		c.inflight[key] = m
	}
	c.mu.Unlock()

	m.Lock()
	return m.Unlock
}
