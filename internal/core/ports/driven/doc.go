// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CandidateSearcher: Primary geocoder search (Nominatim)
//   - BoundaryFinder: Admin-boundary fallback search (Overpass)
//   - PlaceLister: Child-place enumeration inside a boundary (Overpass)
//   - ResponseCache: Raw response caching keyed by normalized query
//   - TownSource / ResolutionWriter / LocalityWriter: Tabular I/O
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - Enricher: Best-effort encyclopedia lookup per child place.
//     Without it, Wikipedia columns stay empty.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
