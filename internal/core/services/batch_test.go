package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
)

// mockResolver implements driving.Resolver for testing.
type mockResolver struct {
	results map[string]domain.Resolution
	errs    map[string]error
}

func (m *mockResolver) Resolve(_ context.Context, town domain.Town) (domain.Resolution, error) {
	if err := m.errs[town.Name]; err != nil {
		return domain.Resolution{}, err
	}
	return m.results[town.Name], nil
}

// mockLocalityService implements driving.LocalityService for testing.
type mockLocalityService struct {
	places map[int64][]domain.ChildPlace
	errs   map[int64]error
}

func (m *mockLocalityService) Localities(
	_ context.Context, relationID int64, _ string, _ bool,
) ([]domain.ChildPlace, error) {
	if err := m.errs[relationID]; err != nil {
		return nil, err
	}
	return m.places[relationID], nil
}

// recordingResolutionWriter implements driven.ResolutionWriter.
type recordingResolutionWriter struct {
	resolved []domain.ResolvedPlace
	review   []domain.ReviewEntry
	writeErr error
	closed   bool
}

func (w *recordingResolutionWriter) WriteResolved(town domain.Town, c domain.Candidate) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.resolved = append(w.resolved, domain.ResolvedPlace{
		Town: town, OSMType: c.OSMType, OSMID: c.OSMID,
		DisplayName: c.DisplayName, Lat: c.Lat, Lon: c.Lon,
	})
	return nil
}

func (w *recordingResolutionWriter) WriteReview(town domain.Town, sc domain.ScoredCandidate) error {
	w.review = append(w.review, domain.ReviewEntry{Town: town, Candidate: sc.Candidate, Score: sc.Score})
	return nil
}

func (w *recordingResolutionWriter) Close() error {
	w.closed = true
	return nil
}

// recordingLocalityWriter implements driven.LocalityWriter.
type recordingLocalityWriter struct {
	long  []domain.ChildPlace
	pivot map[string][]string
}

func (w *recordingLocalityWriter) WriteLong(_ string, p domain.ChildPlace) error {
	w.long = append(w.long, p)
	return nil
}

func (w *recordingLocalityWriter) WritePivot(parent string, children []string) error {
	if w.pivot == nil {
		w.pivot = make(map[string][]string)
	}
	w.pivot[parent] = children
	return nil
}

func (w *recordingLocalityWriter) Close() error { return nil }

func TestResolveAllMixedOutcomes(t *testing.T) {
	match := domain.Candidate{
		DisplayName: "Dudley, United Kingdom",
		OSMType:     domain.TypeRelation,
		OSMID:       42,
		Class:       "boundary",
		Type:        "administrative",
	}
	resolver := &mockResolver{
		results: map[string]domain.Resolution{
			"Dudley": {Match: &match},
			"Sandwell": {Candidates: []domain.ScoredCandidate{
				{Candidate: domain.Candidate{DisplayName: "Sandwell A", OSMID: 1}, Score: 14},
				{Candidate: domain.Candidate{DisplayName: "Sandwell B", OSMID: 2}, Score: 14},
			}},
		},
		errs: map[string]error{
			"Broken": errors.New("exhausted retries"),
		},
	}

	towns := []domain.Town{
		{Name: "Dudley", Country: "United Kingdom"},
		{Name: "Sandwell", Country: "United Kingdom"},
		{Name: "Broken", Country: "United Kingdom"},
	}

	out := &recordingResolutionWriter{}
	b := NewBatch(resolver, nil)

	sum, err := b.ResolveAll(context.Background(), towns, out)
	require.NoError(t, err, "one town's failure must not abort the batch")

	assert.Equal(t, ResolveSummary{Resolved: 1, Review: 1, Failed: 1}, sum)
	require.Len(t, out.resolved, 1)
	assert.Equal(t, int64(42), out.resolved[0].OSMID)
	assert.Len(t, out.review, 2)
}

func TestResolveAllWriterErrorIsFatal(t *testing.T) {
	match := domain.Candidate{OSMType: domain.TypeRelation, OSMID: 1}
	resolver := &mockResolver{results: map[string]domain.Resolution{
		"Dudley": {Match: &match},
	}}

	out := &recordingResolutionWriter{writeErr: errors.New("disk full")}
	b := NewBatch(resolver, nil)

	_, err := b.ResolveAll(context.Background(), []domain.Town{{Name: "Dudley"}}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write resolved row")
}

func TestResolveAllContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBatch(&mockResolver{}, nil)
	_, err := b.ResolveAll(ctx, []domain.Town{{Name: "Dudley"}}, &recordingResolutionWriter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateAllSkipsNonRelations(t *testing.T) {
	localities := &mockLocalityService{
		places: map[int64][]domain.ChildPlace{
			42: {{Name: "Netherton", Kind: "suburb"}, {Name: "Lye", Kind: "village"}},
		},
	}
	rows := []domain.ResolvedPlace{
		{Town: domain.Town{Name: "Dudley"}, OSMType: domain.TypeRelation, OSMID: 42},
		{Town: domain.Town{Name: "Pinpoint"}, OSMType: domain.TypeNode, OSMID: 7},
		{Town: domain.Town{}, OSMType: domain.TypeRelation, OSMID: 9}, // blank name
	}

	out := &recordingLocalityWriter{}
	b := NewBatch(nil, localities)

	sum, err := b.GenerateAll(context.Background(), rows, out, false)
	require.NoError(t, err)

	assert.Equal(t, GenerateSummary{Parents: 1, Children: 2, Skipped: 2}, sum)
	assert.Len(t, out.long, 2)
	assert.Equal(t, []string{"Netherton", "Lye"}, out.pivot["Dudley"])
}

func TestGenerateAllPipelineFailureContinues(t *testing.T) {
	localities := &mockLocalityService{
		places: map[int64][]domain.ChildPlace{42: {{Name: "Lye", Kind: "village"}}},
		errs:   map[int64]error{13: errors.New("exhausted retries")},
	}
	rows := []domain.ResolvedPlace{
		{Town: domain.Town{Name: "Unlucky"}, OSMType: domain.TypeRelation, OSMID: 13},
		{Town: domain.Town{Name: "Dudley"}, OSMType: domain.TypeRelation, OSMID: 42},
	}

	out := &recordingLocalityWriter{}
	b := NewBatch(nil, localities)

	sum, err := b.GenerateAll(context.Background(), rows, out, false)
	require.NoError(t, err)
	assert.Equal(t, GenerateSummary{Parents: 1, Children: 1, Failed: 1}, sum)
	assert.Contains(t, out.pivot, "Dudley")
	assert.NotContains(t, out.pivot, "Unlucky")
}

func TestBatchProgressLines(t *testing.T) {
	match := domain.Candidate{OSMType: domain.TypeRelation, OSMID: 1, DisplayName: "Dudley"}
	resolver := &mockResolver{results: map[string]domain.Resolution{
		"Dudley": {Match: &match},
	}}

	var lines []string
	b := NewBatch(resolver, nil)
	b.Printf = func(format string, args ...any) {
		lines = append(lines, format)
	}

	_, err := b.ResolveAll(context.Background(), []domain.Town{{Name: "Dudley"}}, &recordingResolutionWriter{})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "OK:")
}
