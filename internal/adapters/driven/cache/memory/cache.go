// Package memory provides an in-memory response cache for tests and
// cache-disabled runs.
package memory

import (
	"context"
	"sync"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
)

// Ensure ResponseCache implements the interface.
var _ driven.ResponseCache = (*ResponseCache)(nil)

// ResponseCache is an in-memory implementation of driven.ResponseCache.
type ResponseCache struct {
	mu     sync.RWMutex
	bodies map[string][]byte
}

// NewResponseCache creates a new in-memory response cache.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{
		bodies: make(map[string][]byte),
	}
}

// Get retrieves a cached response body by key.
func (c *ResponseCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	body, ok := c.bodies[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return body, nil
}

// Put stores or refreshes a response body.
func (c *ResponseCache) Put(_ context.Context, key string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies[key] = body
	return nil
}

// Len returns the number of cached responses.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bodies)
}
