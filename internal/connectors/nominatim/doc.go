// Package nominatim implements the primary candidate search against
// the Nominatim geocoder.
//
// Unlike Overpass there is a single canonical endpoint, so resilience
// here is politeness plus bounded retry rather than mirror rotation:
// a token-bucket limiter spaces requests out, transient failures are
// retried a few times, and every distinct query is cached.
package nominatim
