// Package overpass talks to the Overpass API across a rotating list of
// interchangeable public mirrors.
//
// The Executor is the resilience core: it rotates endpoints on
// rate-limit and transient-server-error signals, backs off
// exponentially between rounds, and fails with a typed ExhaustedError
// only after every endpoint has failed in every round.
//
// The Client layers query building, response caching and an in-flight
// guard on top of the Executor, exposing the two operations the core
// needs: the admin-boundary fallback search and child-place
// enumeration inside a boundary relation.
package overpass
