// Package sqlite provides the persistent response cache.
//
// Every raw API response is keyed by service and query slug so reruns
// of a batch replay from disk instead of re-hitting Nominatim and
// Overpass. The schema is managed by embedded migrations and each
// process run is recorded for provenance.
package sqlite
