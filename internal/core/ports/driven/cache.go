package driven

import "context"

// ResponseCache stores raw service responses keyed by a normalized
// representation of each distinct query. Connectors check it before
// any network call and populate it after a successful one.
//
// Implementations must be safe for concurrent use. A miss is reported
// as domain.ErrCacheMiss and is not a fault.
type ResponseCache interface {
	// Get returns the cached body for key, or domain.ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the body under key, replacing any previous entry.
	Put(ctx context.Context, key string, body []byte) error
}
