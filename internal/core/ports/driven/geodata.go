package driven

import (
	"context"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
)

// CandidateSearcher queries the primary geocoding service for a town.
// Implementations must check the response cache before any network call
// and must coerce heterogeneous raw results into domain.Candidate,
// skipping individually invalid records rather than failing the search.
type CandidateSearcher interface {
	// Search returns up to limit candidates for the town.
	Search(ctx context.Context, town domain.Town, limit int) ([]domain.Candidate, error)
}

// BoundaryMatch is one administrative boundary relation returned by the
// fallback boundary search.
type BoundaryMatch struct {
	// RelationID is the OSM relation id of the boundary.
	RelationID int64

	// Name is the boundary's tagged name.
	Name string
}

// BoundaryFinder searches administrative boundary relations by name
// within the configured jurisdiction. It is the fallback path of the
// disambiguation strategy and is only consulted when the primary
// search is ambiguous.
type BoundaryFinder interface {
	// FindAdminBoundaries returns boundary relations whose name matches
	// the town name or a known institutional-naming variant of it.
	FindAdminBoundaries(ctx context.Context, name string) ([]BoundaryMatch, error)
}

// PlaceLister enumerates place-tagged elements inside a boundary
// relation. Elements missing a name or place tag are skipped.
type PlaceLister interface {
	// PlacesInBoundary returns the raw (undeduplicated, unsorted)
	// child places found inside the relation's area.
	PlacesInBoundary(ctx context.Context, relationID int64) ([]domain.ChildPlace, error)
}

// Enricher performs a best-effort external reference lookup for a
// child place. Lookup never returns an error: any failure yields
// empty title and url so the pipeline is never blocked.
type Enricher interface {
	Lookup(ctx context.Context, name, parent string) (title, url string)
}
