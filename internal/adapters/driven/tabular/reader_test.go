package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadTowns(t *testing.T) {
	path := writeFile(t, "towns.csv", `town,county_or_region,country
Dudley,West Midlands,
Sandwell,West Midlands,United Kingdom

 ,Nowhere,
Cradley Heath,,
`)

	towns, err := NewTownReader(path, "United Kingdom").ReadTowns()
	require.NoError(t, err)
	require.Len(t, towns, 3, "blank names are dropped")

	assert.Equal(t, domain.Town{
		Name: "Dudley", Region: "West Midlands", Country: "United Kingdom",
	}, towns[0], "default country fills the blank")
	assert.Equal(t, "Sandwell", towns[1].Name)
	assert.Equal(t, domain.Town{Name: "Cradley Heath", Country: "United Kingdom"}, towns[2])
}

func TestReadTownsAlternateHeaders(t *testing.T) {
	path := writeFile(t, "towns.csv", `Name,County
Halesowen,West Midlands
`)

	towns, err := NewTownReader(path, "United Kingdom").ReadTowns()
	require.NoError(t, err)
	require.Len(t, towns, 1)
	assert.Equal(t, "Halesowen", towns[0].Name)
	assert.Equal(t, "West Midlands", towns[0].Region)
}

func TestReadTownsMissingNameColumn(t *testing.T) {
	path := writeFile(t, "towns.csv", "region,country\nWest Midlands,UK\n")

	_, err := NewTownReader(path, "").ReadTowns()
	assert.Error(t, err)
}

func TestReadResolved(t *testing.T) {
	path := writeFile(t, ResolvedFile, `town,county_or_region,country,osm_type,osm_id,display_name,lat,lon
Dudley,West Midlands,United Kingdom,relation,62148,"Dudley, West Midlands, England, United Kingdom",52.5086,-2.0860
Broken,,,relation,0,missing id,,
Tipton,,United Kingdom,node,14995,Tipton,52.5268,-2.0665
`)

	rows, err := ReadResolved(path)
	require.NoError(t, err)
	require.Len(t, rows, 2, "zero-id rows are dropped")

	assert.Equal(t, int64(62148), rows[0].OSMID)
	assert.Equal(t, domain.TypeRelation, rows[0].OSMType)
	assert.InDelta(t, 52.5086, rows[0].Lat, 1e-6)
	assert.Equal(t, "Tipton", rows[1].Town.Name)
}

func TestReadReviewRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ReviewFile)

	want := []domain.ReviewEntry{
		{
			Town: domain.Town{Name: "Sandwell", Region: "West Midlands", Country: "United Kingdom"},
			Candidate: domain.Candidate{
				DisplayName: "Sandwell, West Midlands, England, United Kingdom",
				OSMType:     domain.TypeRelation, OSMID: 62305,
				Class: "boundary", Type: "administrative",
				Lat: 52.509, Lon: -2.0106,
			},
			Score: 9,
		},
		{
			Town: domain.Town{Name: "Sandwell", Region: "West Midlands", Country: "United Kingdom"},
			Candidate: domain.Candidate{
				DisplayName: "Sandwell, Sandwell, West Midlands, England, United Kingdom",
				OSMType:     domain.TypeNode, OSMID: 11728163,
				Class: "place", Type: "suburb",
				Lat: 52.5249, Lon: -1.9828,
			},
			Score: 9,
		},
	}

	require.NoError(t, WriteReviewFile(path, want))

	got, err := ReadReview(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadResolved(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
