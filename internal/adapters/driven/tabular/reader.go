package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
)

// Ensure TownReader implements the interface.
var _ driven.TownSource = (*TownReader)(nil)

// TownReader reads resolution requests from a CSV file. The header
// names the columns; recognised spellings are matched
// case-insensitively so hand-maintained sheets keep working.
type TownReader struct {
	path           string
	defaultCountry string
}

// NewTownReader creates a reader for the given input file. Towns
// without a country column get defaultCountry.
func NewTownReader(path, defaultCountry string) *TownReader {
	return &TownReader{path: path, defaultCountry: defaultCountry}
}

// ReadTowns returns all rows with a non-empty name.
func (r *TownReader) ReadTowns() ([]domain.Town, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("opening towns file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading towns header: %w", err)
	}

	nameCol := findColumn(header, "town", "name")
	regionCol := findColumn(header, "county_or_region", "county", "region")
	countryCol := findColumn(header, "country")
	if nameCol < 0 {
		return nil, fmt.Errorf("towns file %s: no town or name column", r.path)
	}

	var towns []domain.Town
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading towns row: %w", err)
		}

		town := domain.Town{
			Name:    field(record, nameCol),
			Region:  field(record, regionCol),
			Country: field(record, countryCol),
		}
		if town.Name == "" {
			continue
		}
		if town.Country == "" {
			town.Country = r.defaultCountry
		}
		towns = append(towns, town)
	}
	return towns, nil
}

// ReadResolved loads the resolved map produced by the resolution
// phase. Rows with a blank name or id are skipped, not fatal: the
// enumeration phase tolerates a hand-edited sheet.
func ReadResolved(path string) ([]domain.ResolvedPlace, error) {
	records, header, err := readAll(path)
	if err != nil {
		return nil, err
	}

	nameCol := findColumn(header, "town")
	regionCol := findColumn(header, "county_or_region")
	countryCol := findColumn(header, "country")
	typeCol := findColumn(header, "osm_type")
	idCol := findColumn(header, "osm_id")
	displayCol := findColumn(header, "display_name")
	latCol := findColumn(header, "lat")
	lonCol := findColumn(header, "lon")
	if nameCol < 0 || typeCol < 0 || idCol < 0 {
		return nil, fmt.Errorf("resolved file %s: missing town, osm_type or osm_id column", path)
	}

	var rows []domain.ResolvedPlace
	for _, record := range records {
		id, _ := strconv.ParseInt(field(record, idCol), 10, 64)
		lat, _ := strconv.ParseFloat(field(record, latCol), 64)
		lon, _ := strconv.ParseFloat(field(record, lonCol), 64)
		row := domain.ResolvedPlace{
			Town: domain.Town{
				Name:    field(record, nameCol),
				Region:  field(record, regionCol),
				Country: field(record, countryCol),
			},
			OSMType:     field(record, typeCol),
			OSMID:       id,
			DisplayName: field(record, displayCol),
			Lat:         lat,
			Lon:         lon,
		}
		if row.Town.Name == "" || row.OSMID == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadReview loads the review sheet: one entry per surviving candidate
// of each unresolved town, in the order the resolution phase wrote
// them.
func ReadReview(path string) ([]domain.ReviewEntry, error) {
	records, header, err := readAll(path)
	if err != nil {
		return nil, err
	}

	nameCol := findColumn(header, "town")
	regionCol := findColumn(header, "county_or_region")
	countryCol := findColumn(header, "country")
	typeCol := findColumn(header, "osm_type")
	idCol := findColumn(header, "osm_id")
	displayCol := findColumn(header, "display_name")
	classCol := findColumn(header, "class")
	kindCol := findColumn(header, "type")
	latCol := findColumn(header, "lat")
	lonCol := findColumn(header, "lon")
	scoreCol := findColumn(header, "score")
	if nameCol < 0 || typeCol < 0 || idCol < 0 {
		return nil, fmt.Errorf("review file %s: missing town, osm_type or osm_id column", path)
	}

	var entries []domain.ReviewEntry
	for _, record := range records {
		id, _ := strconv.ParseInt(field(record, idCol), 10, 64)
		lat, _ := strconv.ParseFloat(field(record, latCol), 64)
		lon, _ := strconv.ParseFloat(field(record, lonCol), 64)
		score, _ := strconv.Atoi(field(record, scoreCol))
		entry := domain.ReviewEntry{
			Town: domain.Town{
				Name:    field(record, nameCol),
				Region:  field(record, regionCol),
				Country: field(record, countryCol),
			},
			Candidate: domain.Candidate{
				DisplayName: field(record, displayCol),
				OSMType:     field(record, typeCol),
				OSMID:       id,
				Class:       field(record, classCol),
				Type:        field(record, kindCol),
				Lat:         lat,
				Lon:         lon,
			},
			Score: score,
		}
		if entry.Town.Name == "" || entry.Candidate.OSMID == 0 {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// readAll slurps a headed CSV file.
func readAll(path string) (records [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err = cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading row of %s: %w", path, err)
		}
		records = append(records, record)
	}
	return records, header, nil
}

// findColumn returns the index of the first header cell matching one
// of the given names, or -1.
func findColumn(header []string, names ...string) int {
	for i, cell := range header {
		cell = strings.ToLower(strings.TrimSpace(cell))
		for _, name := range names {
			if cell == name {
				return i
			}
		}
	}
	return -1
}

// field returns a trimmed cell, tolerating short records and missing
// columns.
func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}
