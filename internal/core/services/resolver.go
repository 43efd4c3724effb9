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

// Ensure Resolver implements the interface.
var _ driving.Resolver = (*Resolver)(nil)

// Scoring weights. Higher is better; a candidate must strictly beat
// every other to resolve automatically.
const (
	scoreNotRelation   = -5 // only relations map to a search area
	scoreRelation      = 2
	scoreBoundaryClass = 6
	scoreAdminType     = 6
	scoreNameMatch     = 2
	scoreRegionMatch   = 2
	scoreCountryMatch  = 1
	scoreBoroughToken  = 1 // UK local-authority naming signal
)

// DefaultThreshold is the minimum score a candidate needs to pass the
// final confidence filter. Heuristic; configurable, not derived.
const DefaultThreshold = 10

// DefaultSearchLimit is the number of candidates requested from the
// primary geocoder per town.
const DefaultSearchLimit = 10

// Resolver turns a town into exactly one Resolution. The strategy is
// strictly no-guess: when two candidates are equally plausible the
// town is deferred to manual review rather than silently picked.
type Resolver struct {
	search     driven.CandidateSearcher
	boundaries driven.BoundaryFinder // optional fallback, may be nil
	threshold  int
	limit      int
}

// NewResolver creates a resolver. boundaries may be nil to disable the
// jurisdiction-scoped fallback search. A non-positive threshold falls
// back to DefaultThreshold.
func NewResolver(search driven.CandidateSearcher, boundaries driven.BoundaryFinder, threshold int) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{
		search:     search,
		boundaries: boundaries,
		threshold:  threshold,
		limit:      DefaultSearchLimit,
	}
}

// SetLimit overrides the number of candidates requested per town.
// Non-positive values are ignored.
func (r *Resolver) SetLimit(limit int) {
	if limit > 0 {
		r.limit = limit
	}
}

// Score rates how plausible a candidate is for a town. It is a pure
// function of its inputs: identical pairs always yield identical
// scores.
func Score(c domain.Candidate, t domain.Town) int {
	s := 0
	label := strings.ToLower(c.DisplayName)

	// Only relations can become Overpass search areas.
	if c.OSMType != domain.TypeRelation {
		s += scoreNotRelation
	} else {
		s += scoreRelation
	}

	if c.Class == "boundary" {
		s += scoreBoundaryClass
	}
	if c.Type == "administrative" {
		s += scoreAdminType
	}

	if t.Name != "" && strings.Contains(label, strings.ToLower(t.Name)) {
		s += scoreNameMatch
	}
	if t.Region != "" && strings.Contains(label, strings.ToLower(t.Region)) {
		s += scoreRegionMatch
	}
	if t.Country != "" && strings.Contains(label, strings.ToLower(t.Country)) {
		s += scoreCountryMatch
	}

	if strings.Contains(label, "borough") {
		s += scoreBoroughToken
	}

	return s
}

// Resolve runs the disambiguation strategy in strict order, first
// success wins:
//
//  1. exactly one administrative boundary relation among the
//     candidates,
//  2. a strict-score winner among multiple admin relations,
//  3. exactly one boundary relation from the fallback search,
//  4. a unique or strictly-winning candidate at or above the
//     confidence threshold,
//  5. otherwise NeedsReview with every original candidate.
func (r *Resolver) Resolve(ctx context.Context, town domain.Town) (domain.Resolution, error) {
	logger.Section("Resolve: " + town.Name)

	candidates, err := r.search.Search(ctx, town, r.limit)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("search candidates: %w", err)
	}
	logger.Debug("%d candidates for %q", len(candidates), town.QueryString())

	admin := filterAdminRelations(candidates)
	logger.Debug("%d admin boundary relations", len(admin))

	// Step 1: a single admin boundary relation wins outright,
	// regardless of its score.
	if len(admin) == 1 {
		match := admin[0]
		logger.Info("unique admin relation: %s", match.DisplayName)
		return domain.Resolution{Match: &match}, nil
	}

	// Step 2: among several admin relations, a strict score winner.
	if len(admin) > 1 {
		scored := scoreAndSort(admin, town)
		if scored[0].Score > scored[1].Score {
			match := scored[0].Candidate
			logger.Info("score winner: %s (%d > %d)",
				match.DisplayName, scored[0].Score, scored[1].Score)
			return domain.Resolution{Match: &match}, nil
		}
		logger.Debug("top admin scores tied at %d", scored[0].Score)
	}

	// Step 3: jurisdiction-scoped boundary search by name pattern.
	if r.boundaries != nil {
		matches, err := r.boundaries.FindAdminBoundaries(ctx, town.Name)
		if err != nil {
			return domain.Resolution{}, fmt.Errorf("boundary fallback: %w", err)
		}
		if len(matches) == 1 {
			match := synthesizeCandidate(matches[0], town)
			logger.Info("boundary fallback match: %s", match.DisplayName)
			return domain.Resolution{Match: &match}, nil
		}
		logger.Debug("boundary fallback returned %d matches", len(matches))
	}

	// Step 4: confidence threshold over all original candidates.
	scored := scoreAndSort(candidates, town)
	passing := make([]domain.ScoredCandidate, 0, len(scored))
	for _, sc := range scored {
		if sc.Score >= r.threshold {
			passing = append(passing, sc)
		}
	}
	if len(passing) == 1 {
		match := passing[0].Candidate
		logger.Info("single candidate above threshold %d: %s", r.threshold, match.DisplayName)
		return domain.Resolution{Match: &match}, nil
	}
	if len(passing) >= 2 && passing[0].Score > passing[1].Score {
		match := passing[0].Candidate
		logger.Info("threshold winner: %s (%d > %d)",
			match.DisplayName, passing[0].Score, passing[1].Score)
		return domain.Resolution{Match: &match}, nil
	}

	// Step 5: defer to a human, keeping every original candidate in
	// discovery order for inspection.
	review := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		review = append(review, domain.ScoredCandidate{Candidate: c, Score: Score(c, town)})
	}
	logger.Info("ambiguous or low confidence, %d candidates for review", len(review))
	return domain.Resolution{Candidates: review}, nil
}

// filterAdminRelations keeps only administrative boundary relations,
// preserving discovery order.
func filterAdminRelations(candidates []domain.Candidate) []domain.Candidate {
	var out []domain.Candidate
	for _, c := range candidates {
		if c.IsAdminRelation() {
			out = append(out, c)
		}
	}
	return out
}

// scoreAndSort scores every candidate and sorts descending by score.
// The sort is stable so equal scores keep discovery order.
func scoreAndSort(candidates []domain.Candidate, town domain.Town) []domain.ScoredCandidate {
	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, domain.ScoredCandidate{Candidate: c, Score: Score(c, town)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// synthesizeCandidate builds a Candidate from a fallback boundary
// match. Coordinates are unknown at this point and left zero.
func synthesizeCandidate(m driven.BoundaryMatch, town domain.Town) domain.Candidate {
	label := m.Name
	if town.Country != "" {
		label += ", " + town.Country
	}
	return domain.Candidate{
		DisplayName: label,
		OSMType:     domain.TypeRelation,
		OSMID:       m.RelationID,
		Class:       "boundary",
		Type:        "administrative",
	}
}
