package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driving"
	"github.com/loamworks/gazetteer-cli/internal/logger"
)

// Ensure LocalityService implements the interface.
var _ driving.LocalityService = (*LocalityService)(nil)

// LocalityService enumerates child places inside a resolved boundary:
// query, dedupe, order, then best-effort enrichment per child.
type LocalityService struct {
	places   driven.PlaceLister
	enricher driven.Enricher // optional, may be nil
}

// NewLocalityService creates a locality service. enricher may be nil
// to disable the encyclopedia lookup entirely.
func NewLocalityService(places driven.PlaceLister, enricher driven.Enricher) *LocalityService {
	return &LocalityService{places: places, enricher: enricher}
}

// Localities returns the deduplicated, ordered child places of the
// relation. Enrichment failures never fail the call: a child that
// cannot be matched simply keeps empty Wikipedia fields.
func (s *LocalityService) Localities(
	ctx context.Context, relationID int64, parent string, enrich bool,
) ([]domain.ChildPlace, error) {
	logger.Section("Localities: " + parent)

	raw, err := s.places.PlacesInBoundary(ctx, relationID)
	if err != nil {
		return nil, fmt.Errorf("places in boundary %d: %w", relationID, err)
	}
	logger.Debug("%d raw place elements in relation %d", len(raw), relationID)

	places := dedupeAndRank(raw)
	logger.Debug("%d places after dedupe", len(places))

	if enrich && s.enricher != nil {
		for i := range places {
			title, url := s.enricher.Lookup(ctx, places[i].Name, parent)
			places[i].WikiTitle = title
			places[i].WikiURL = url
		}
	}

	return places, nil
}

// dedupeAndRank removes duplicate names (lowercase-trimmed key, first
// occurrence wins) and sorts by (place-kind rank, lowercase name) so
// broader area types surface first regardless of alphabetical order.
// It is idempotent: applying it to its own output changes nothing.
func dedupeAndRank(places []domain.ChildPlace) []domain.ChildPlace {
	seen := make(map[string]struct{}, len(places))
	out := make([]domain.ChildPlace, 0, len(places))
	for _, p := range places {
		key := p.DedupeKey()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := domain.PlaceRank(out[i].Kind), domain.PlaceRank(out[j].Kind)
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	return out
}
