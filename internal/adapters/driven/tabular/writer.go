package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
	"github.com/loamworks/gazetteer-cli/internal/logger"
)

var resolvedHeader = []string{
	"town", "county_or_region", "country",
	"osm_type", "osm_id", "display_name", "lat", "lon",
}

var reviewHeader = []string{
	"town", "county_or_region", "country",
	"osm_type", "osm_id", "display_name", "class", "type", "lat", "lon", "score",
}

// Ensure ResolutionCSV implements the interface.
var _ driven.ResolutionWriter = (*ResolutionCSV)(nil)

// ResolutionCSV writes the resolution-phase outputs: the resolved map
// and the review sheet.
type ResolutionCSV struct {
	resolvedFile *os.File
	reviewFile   *os.File
	resolved     *csv.Writer
	review       *csv.Writer
}

// NewResolutionCSV creates both output files in dir, truncating any
// previous run, and writes their headers.
func NewResolutionCSV(dir string) (*ResolutionCSV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	resolvedFile, err := os.Create(filepath.Join(dir, ResolvedFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", ResolvedFile, err)
	}
	reviewFile, err := os.Create(filepath.Join(dir, ReviewFile))
	if err != nil {
		resolvedFile.Close()
		return nil, fmt.Errorf("creating %s: %w", ReviewFile, err)
	}

	w := &ResolutionCSV{
		resolvedFile: resolvedFile,
		reviewFile:   reviewFile,
		resolved:     csv.NewWriter(resolvedFile),
		review:       csv.NewWriter(reviewFile),
	}
	if err := w.resolved.Write(resolvedHeader); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing %s header: %w", ResolvedFile, err)
	}
	if err := w.review.Write(reviewHeader); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing %s header: %w", ReviewFile, err)
	}
	return w, nil
}

// WriteResolved appends one row to the resolved map.
func (w *ResolutionCSV) WriteResolved(town domain.Town, c domain.Candidate) error {
	return w.resolved.Write(resolvedRecord(town, c))
}

// WriteReview appends one candidate row to the review sheet.
func (w *ResolutionCSV) WriteReview(town domain.Town, sc domain.ScoredCandidate) error {
	return w.review.Write([]string{
		town.Name, town.Region, town.Country,
		sc.Candidate.OSMType, strconv.FormatInt(sc.Candidate.OSMID, 10),
		sc.Candidate.DisplayName, sc.Candidate.Class, sc.Candidate.Type,
		formatCoord(sc.Candidate.Lat), formatCoord(sc.Candidate.Lon),
		strconv.Itoa(sc.Score),
	})
}

// Close flushes and closes both files.
func (w *ResolutionCSV) Close() error {
	w.resolved.Flush()
	w.review.Flush()
	err := errors.Join(w.resolved.Error(), w.review.Error())
	return errors.Join(err, w.resolvedFile.Close(), w.reviewFile.Close())
}

// AppendResolved adds rows to an existing resolved map, creating the
// file with its header first if needed. The review flow uses this to
// merge operator picks into the map from the batch run.
func AppendResolved(path string, rows []domain.ResolvedPlace) error {
	info, statErr := os.Stat(path)
	needHeader := os.IsNotExist(statErr) || (statErr == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needHeader {
		if err := cw.Write(resolvedHeader); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for _, row := range rows {
		c := domain.Candidate{
			DisplayName: row.DisplayName,
			OSMType:     row.OSMType,
			OSMID:       row.OSMID,
			Lat:         row.Lat,
			Lon:         row.Lon,
		}
		if err := cw.Write(resolvedRecord(row.Town, c)); err != nil {
			return fmt.Errorf("writing resolved row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReviewFile rewrites the review sheet with the given entries.
func WriteReviewFile(path string, entries []domain.ReviewEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(reviewHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{
			e.Town.Name, e.Town.Region, e.Town.Country,
			e.Candidate.OSMType, strconv.FormatInt(e.Candidate.OSMID, 10),
			e.Candidate.DisplayName, e.Candidate.Class, e.Candidate.Type,
			formatCoord(e.Candidate.Lat), formatCoord(e.Candidate.Lon),
			strconv.Itoa(e.Score),
		}); err != nil {
			return fmt.Errorf("writing review row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func resolvedRecord(town domain.Town, c domain.Candidate) []string {
	return []string{
		town.Name, town.Region, town.Country,
		c.OSMType, strconv.FormatInt(c.OSMID, 10), c.DisplayName,
		formatCoord(c.Lat), formatCoord(c.Lon),
	}
}

// formatCoord renders a coordinate without trailing zero noise. Zero
// means unknown and renders empty, matching synthesized fallback rows.
func formatCoord(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Ensure LocalityCSV implements the interface.
var _ driven.LocalityWriter = (*LocalityCSV)(nil)

// LocalityCSV writes the enumeration-phase outputs: the long-form
// table and the wide pivot table.
type LocalityCSV struct {
	longFile    *os.File
	pivotFile   *os.File
	long        *csv.Writer
	pivot       *csv.Writer
	maxChildren int
}

// NewLocalityCSV creates both output files in dir and writes their
// headers. maxChildren fixes the pivot sheet's column count; values
// below one fall back to 25.
func NewLocalityCSV(dir string, maxChildren int) (*LocalityCSV, error) {
	if maxChildren < 1 {
		maxChildren = 25
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	longFile, err := os.Create(filepath.Join(dir, LongFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", LongFile, err)
	}
	pivotFile, err := os.Create(filepath.Join(dir, PivotFile))
	if err != nil {
		longFile.Close()
		return nil, fmt.Errorf("creating %s: %w", PivotFile, err)
	}

	w := &LocalityCSV{
		longFile:    longFile,
		pivotFile:   pivotFile,
		long:        csv.NewWriter(longFile),
		pivot:       csv.NewWriter(pivotFile),
		maxChildren: maxChildren,
	}

	if err := w.long.Write([]string{
		"parent_town", "child", "kind", "wiki_title", "wiki_url",
	}); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing %s header: %w", LongFile, err)
	}

	pivotHeader := make([]string, 0, maxChildren+1)
	pivotHeader = append(pivotHeader, "Parent")
	for i := 1; i <= maxChildren; i++ {
		pivotHeader = append(pivotHeader, fmt.Sprintf("Child_%d", i))
	}
	if err := w.pivot.Write(pivotHeader); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing %s header: %w", PivotFile, err)
	}
	return w, nil
}

// WriteLong appends one child-place row.
func (w *LocalityCSV) WriteLong(parent string, p domain.ChildPlace) error {
	return w.long.Write([]string{parent, p.Name, p.Kind, p.WikiTitle, p.WikiURL})
}

// WritePivot appends one parent row, padded or truncated to the fixed
// column count.
func (w *LocalityCSV) WritePivot(parent string, children []string) error {
	if len(children) > w.maxChildren {
		logger.Warn("%s: %d children truncated to %d pivot columns",
			parent, len(children), w.maxChildren)
		children = children[:w.maxChildren]
	}

	record := make([]string, w.maxChildren+1)
	record[0] = parent
	copy(record[1:], children)
	return w.pivot.Write(record)
}

// Close flushes and closes both files.
func (w *LocalityCSV) Close() error {
	w.long.Flush()
	w.pivot.Flush()
	err := errors.Join(w.long.Error(), w.pivot.Error())
	return errors.Join(err, w.longFile.Close(), w.pivotFile.Close())
}
