package domain

import (
	"regexp"
	"strings"
)

// OSM element types as reported by the geocoding services.
const (
	TypeNode     = "node"
	TypeWay      = "way"
	TypeRelation = "relation"
)

// Town is a single resolution request: a human-entered place name with
// optional region and country qualifiers. It is immutable input; the
// default country is applied when the input row omits one.
type Town struct {
	// Name is the primary place name, e.g. "Dudley".
	Name string

	// Region is an optional county or region qualifier.
	Region string

	// Country is an optional country qualifier.
	Country string
}

// QueryString joins the non-empty fields into a comma-separated
// geocoder query, e.g. "Dudley, West Midlands, United Kingdom".
func (t Town) QueryString() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Name, t.Region, t.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Candidate is one geocoder result for a town. Candidates are produced
// only by the candidate source adapters and never mutated afterwards.
type Candidate struct {
	// DisplayName is the full human-readable label from the geocoder.
	DisplayName string

	// OSMType is the element type: node, way or relation.
	OSMType string

	// OSMID is the element id, unique within its type.
	OSMID int64

	// Class is the semantic class, e.g. "boundary".
	Class string

	// Type is the semantic subtype, e.g. "administrative".
	Type string

	// Lat and Lon are the representative coordinates. Zero when the
	// candidate was synthesized by the boundary fallback search.
	Lat float64
	Lon float64
}

// IsAdminRelation reports whether the candidate is an administrative
// boundary relation, the only kind usable as a child-place search area.
func (c Candidate) IsAdminRelation() bool {
	return c.OSMType == TypeRelation && c.Class == "boundary" && c.Type == "administrative"
}

// ScoredCandidate pairs a candidate with its disambiguation score.
type ScoredCandidate struct {
	Candidate Candidate
	Score     int
}

// Resolution is the terminal outcome for one town. Exactly one of the
// two shapes holds: Match is non-nil for an unambiguous resolution, or
// Candidates carries every surviving candidate for manual review.
// A resolution is never re-evaluated once produced.
type Resolution struct {
	// Match is the single winning candidate, nil when ambiguous.
	Match *Candidate

	// Candidates holds all scored candidates when review is needed.
	Candidates []ScoredCandidate
}

// Resolved reports whether the town was unambiguously resolved.
func (r Resolution) Resolved() bool {
	return r.Match != nil
}

// ChildPlace is a place-tagged element found inside a resolved
// boundary, optionally enriched with a Wikipedia cross-reference.
type ChildPlace struct {
	// Name is the place name as tagged in OSM.
	Name string

	// Kind is the place tag value, e.g. "suburb" or "hamlet".
	Kind string

	// WikiTitle and WikiURL are the best-effort encyclopedia match.
	// Both are empty when enrichment is disabled or fails.
	WikiTitle string
	WikiURL   string
}

// DedupeKey returns the uniqueness key for child places: the
// lowercase-trimmed name. First occurrence wins on duplicates.
func (p ChildPlace) DedupeKey() string {
	return strings.ToLower(strings.TrimSpace(p.Name))
}

// ResolvedPlace is one row of the resolution-phase output, used as
// input to the enumeration phase.
type ResolvedPlace struct {
	Town        Town
	OSMType     string
	OSMID       int64
	DisplayName string
	Lat         float64
	Lon         float64
}

// ReviewEntry is one row of the needs-review output: a surviving
// candidate for a town that could not be resolved automatically.
type ReviewEntry struct {
	Town      Town
	Candidate Candidate
	Score     int
}

// DefaultPlaceKinds are the place tags that count as child locations,
// ordered by administrative breadth.
var DefaultPlaceKinds = []string{"suburb", "neighbourhood", "quarter", "village", "hamlet"}

// placeRank orders place kinds so broader area types sort first.
var placeRank = map[string]int{
	"suburb":        1,
	"neighbourhood": 2,
	"quarter":       3,
	"village":       4,
	"hamlet":        5,
}

// unknownRank sorts unrecognised place kinds after all known ones.
const unknownRank = 99

// PlaceRank returns the sort rank for a place kind. Unknown kinds
// rank last so they never displace recognised settlement types.
func PlaceRank(kind string) int {
	if r, ok := placeRank[kind]; ok {
		return r
	}
	return unknownRank
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug normalizes a string into a lowercase, underscore-separated
// token suitable for cache keys and filenames.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugPattern.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
