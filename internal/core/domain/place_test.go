package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTownQueryString(t *testing.T) {
	tests := []struct {
		name string
		town Town
		want string
	}{
		{
			name: "all fields",
			town: Town{Name: "Dudley", Region: "West Midlands", Country: "United Kingdom"},
			want: "Dudley, West Midlands, United Kingdom",
		},
		{
			name: "no region",
			town: Town{Name: "Sandwell", Country: "United Kingdom"},
			want: "Sandwell, United Kingdom",
		},
		{
			name: "name only",
			town: Town{Name: "Walsall"},
			want: "Walsall",
		},
		{
			name: "empty",
			town: Town{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.town.QueryString())
		})
	}
}

func TestCandidateIsAdminRelation(t *testing.T) {
	admin := Candidate{OSMType: TypeRelation, Class: "boundary", Type: "administrative"}
	assert.True(t, admin.IsAdminRelation())

	node := admin
	node.OSMType = TypeNode
	assert.False(t, node.IsAdminRelation())

	postal := admin
	postal.Type = "postal_code"
	assert.False(t, postal.IsAdminRelation())
}

func TestResolutionResolved(t *testing.T) {
	assert.False(t, Resolution{}.Resolved())
	assert.True(t, Resolution{Match: &Candidate{OSMID: 1}}.Resolved())
}

func TestChildPlaceDedupeKey(t *testing.T) {
	assert.Equal(t, "blackheath", ChildPlace{Name: "  Blackheath "}.DedupeKey())
	assert.Equal(t,
		ChildPlace{Name: "BLACKHEATH"}.DedupeKey(),
		ChildPlace{Name: "blackheath"}.DedupeKey())
}

func TestPlaceRank(t *testing.T) {
	assert.Equal(t, 1, PlaceRank("suburb"))
	assert.Equal(t, 5, PlaceRank("hamlet"))

	// Unknown kinds sort after every known kind.
	for _, kind := range DefaultPlaceKinds {
		assert.Less(t, PlaceRank(kind), PlaceRank("city"))
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dudley, West Midlands", "dudley_west_midlands"},
		{"  Stoke-on-Trent  ", "stoke_on_trent"},
		{"Bo'ness", "bo_ness"},
		{"___", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in))
	}
}
