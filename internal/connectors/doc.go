// Package connectors groups the clients for the external services the
// pipeline talks to: Nominatim for candidate search, Overpass for
// boundary fallback and child-place enumeration, Wikipedia for
// best-effort enrichment.
//
// Each connector implements one or more driven ports and owns its own
// politeness and resilience policy, since the public instances of
// these services enforce very different limits.
package connectors
