package driven

import "github.com/loamworks/gazetteer-cli/internal/core/domain"

// TownSource reads resolution requests from tabular input.
type TownSource interface {
	// ReadTowns returns all input rows with a non-empty name,
	// applying the default country where the row omits one.
	ReadTowns() ([]domain.Town, error)
}

// ResolutionWriter persists the two resolution-phase outputs: one row
// per resolved town, one row per surviving candidate of each
// unresolved town.
type ResolutionWriter interface {
	WriteResolved(town domain.Town, c domain.Candidate) error
	WriteReview(town domain.Town, sc domain.ScoredCandidate) error

	// Close flushes and closes the underlying outputs.
	Close() error
}

// LocalityWriter persists the enumeration-phase outputs: the long-form
// table (one row per child) and the wide pivot table (one row per
// parent, capped at a fixed column count).
type LocalityWriter interface {
	WriteLong(parent string, p domain.ChildPlace) error
	WritePivot(parent string, children []string) error

	// Close flushes and closes the underlying outputs.
	Close() error
}
