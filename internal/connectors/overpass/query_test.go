package overpass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAreaID(t *testing.T) {
	assert.Equal(t, int64(3600000042), AreaID(42))
}

func TestBuildBoundaryQuery(t *testing.T) {
	q := BuildBoundaryQuery("Dudley", "gb", []string{"6", "8"})

	assert.Contains(t, q, `["ISO3166-1"="GB"]`)
	assert.Contains(t, q, `["admin_level"~"^(6|8)$"]`)
	// All naming variants of a UK local authority.
	assert.Contains(t, q, `Dudley\s+Borough`)
	assert.Contains(t, q, `Borough\s+of\s+Dudley`)
	assert.Contains(t, q, `Metropolitan\s+Borough\s+of\s+Dudley`)
}

func TestBuildBoundaryQueryEscapesName(t *testing.T) {
	// Regex metacharacters in a town name must not leak into the
	// pattern unescaped.
	q := BuildBoundaryQuery("St. Helens (Merseyside)", "gb", []string{"6"})
	assert.Contains(t, q, `St\. Helens \(Merseyside\)`)
}

func TestBuildPlacesQuery(t *testing.T) {
	q := BuildPlacesQuery(62148, []string{"suburb", "neighbourhood", "quarter", "village", "hamlet"})

	assert.Contains(t, q, "area(3600062148)")
	assert.Contains(t, q, `node["place"~"^(suburb|neighbourhood|quarter|village|hamlet)$"]`)
	assert.Contains(t, q, `way["place"~`)
	assert.Contains(t, q, `relation["place"~`)
	assert.Contains(t, q, "out tags center;")
}

func TestParseBoundaryMatches(t *testing.T) {
	body := []byte(`{"elements":[
		{"type":"relation","id":62148,"tags":{"name":"Dudley"}},
		{"type":"way","id":99,"tags":{"name":"Not a relation"}},
		{"type":"relation","id":7,"tags":{}},
		{"type":"relation","id":0,"tags":{"name":"Zero id"}}
	]}`)

	matches, err := ParseBoundaryMatches(body)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(62148), matches[0].RelationID)
	assert.Equal(t, "Dudley", matches[0].Name)
}

func TestParseBoundaryMatchesBadJSON(t *testing.T) {
	_, err := ParseBoundaryMatches([]byte(`{"elements":`))
	assert.Error(t, err)
}

func TestParsePlaces(t *testing.T) {
	body := []byte(`{"elements":[
		{"type":"node","id":1,"tags":{"name":"Netherton","place":"suburb"}},
		{"type":"way","id":2,"tags":{"name":"Lye","place":"village"}},
		{"type":"node","id":3,"tags":{"place":"hamlet"}},
		{"type":"node","id":4,"tags":{"name":"No place tag"}},
		{"type":"node","id":5,"tags":{"name":"  ","place":"suburb"}}
	]}`)

	places, err := ParsePlaces(body)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Netherton", places[0].Name)
	assert.Equal(t, "suburb", places[0].Kind)
	assert.Equal(t, "Lye", places[1].Name)
	assert.Equal(t, "village", places[1].Kind)
}
