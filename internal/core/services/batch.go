package services

import (
	"context"
	"fmt"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driving"
	"github.com/loamworks/gazetteer-cli/internal/logger"
)

// ResolveSummary reports the outcome of a resolution batch.
type ResolveSummary struct {
	Resolved int
	Review   int
	Failed   int
}

// GenerateSummary reports the outcome of an enumeration batch.
type GenerateSummary struct {
	Parents  int
	Children int
	Skipped  int
	Failed   int
}

// Batch orchestrates the two phases over tabular inputs. A failure on
// one town is logged and counted, never fatal for the rest of the
// batch; only writer errors abort, since partial output files would be
// silently misleading.
type Batch struct {
	resolver   driving.Resolver
	localities driving.LocalityService

	// Printf receives per-row progress lines. Nil disables progress.
	Printf func(format string, args ...any)
}

// NewBatch creates a batch orchestrator.
func NewBatch(resolver driving.Resolver, localities driving.LocalityService) *Batch {
	return &Batch{resolver: resolver, localities: localities}
}

func (b *Batch) printf(format string, args ...any) {
	if b.Printf != nil {
		b.Printf(format, args...)
	}
}

// ResolveAll resolves every town and writes one row per resolved town
// plus one row per surviving candidate of each unresolved town.
func (b *Batch) ResolveAll(
	ctx context.Context, towns []domain.Town, out driven.ResolutionWriter,
) (ResolveSummary, error) {
	var sum ResolveSummary

	for _, town := range towns {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		res, err := b.resolver.Resolve(ctx, town)
		if err != nil {
			logger.Warn("resolve %q failed: %v", town.Name, err)
			sum.Failed++
			continue
		}

		if res.Resolved() {
			if err := out.WriteResolved(town, *res.Match); err != nil {
				return sum, fmt.Errorf("write resolved row: %w", err)
			}
			sum.Resolved++
			b.printf("OK: %s -> %s (%s/%d)\n",
				town.Name, res.Match.DisplayName, res.Match.OSMType, res.Match.OSMID)
			continue
		}

		for _, sc := range res.Candidates {
			if err := out.WriteReview(town, sc); err != nil {
				return sum, fmt.Errorf("write review row: %w", err)
			}
		}
		sum.Review++
		b.printf("REVIEW: %s (ambiguous or low confidence)\n", town.Name)
	}

	return sum, nil
}

// GenerateAll enumerates child places for every resolved boundary and
// writes the long-form and pivot outputs. Rows whose boundary is not a
// relation are skipped with a warning: only relations map to a search
// area.
func (b *Batch) GenerateAll(
	ctx context.Context, rows []domain.ResolvedPlace, out driven.LocalityWriter, enrich bool,
) (GenerateSummary, error) {
	var sum GenerateSummary

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		if row.Town.Name == "" || row.OSMType == "" || row.OSMID == 0 {
			sum.Skipped++
			continue
		}
		if row.OSMType != domain.TypeRelation {
			logger.Warn("skip %s: %s/%d is not a relation boundary",
				row.Town.Name, row.OSMType, row.OSMID)
			sum.Skipped++
			continue
		}

		places, err := b.localities.Localities(ctx, row.OSMID, row.Town.Name, enrich)
		if err != nil {
			logger.Warn("enumerate %q failed: %v", row.Town.Name, err)
			sum.Failed++
			continue
		}

		children := make([]string, 0, len(places))
		for _, p := range places {
			if err := out.WriteLong(row.Town.Name, p); err != nil {
				return sum, fmt.Errorf("write long row: %w", err)
			}
			children = append(children, p.Name)
		}
		if err := out.WritePivot(row.Town.Name, children); err != nil {
			return sum, fmt.Errorf("write pivot row: %w", err)
		}

		sum.Parents++
		sum.Children += len(places)
		b.printf("%s: found %d place-tagged areas\n", row.Town.Name, len(places))
	}

	return sum, nil
}
