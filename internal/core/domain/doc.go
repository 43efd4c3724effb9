// Package domain defines the core business entities for the gazetteer.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Town: A place-name resolution request
//   - Candidate: One geocoder result for a request
//   - Resolution: The terminal outcome of resolving a town
//   - ChildPlace: A place-tagged element inside a resolved boundary
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
