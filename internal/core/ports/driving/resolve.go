package driving

import (
	"context"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
)

// Resolver maps a town to exactly one Resolution. The resolution is
// no-guess: it commits to a candidate only when exactly one candidate
// strictly dominates all others, and defers to review otherwise.
type Resolver interface {
	Resolve(ctx context.Context, town domain.Town) (domain.Resolution, error)
}

// LocalityService enumerates the child places of a resolved boundary:
// queried, deduplicated, ordered, and optionally enriched.
type LocalityService interface {
	// Localities returns the ordered child places of the relation.
	// When enrich is false the Wikipedia fields stay empty.
	Localities(ctx context.Context, relationID int64, parent string, enrich bool) ([]domain.ChildPlace, error)
}
