package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrCacheMiss indicates a response cache has no entry for a key.
	// Absence of a cache entry is expected, not a fault.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotRelation indicates a resolved boundary is not a relation
	// and therefore cannot be used as a child-place search area.
	ErrNotRelation = errors.New("boundary is not a relation")
)
