package overpass

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/loamworks/gazetteer-cli/internal/core/domain"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
)

// areaIDOffset converts an OSM relation id into its Overpass area id.
const areaIDOffset = 3600000000

// AreaID returns the Overpass area handle for a boundary relation.
func AreaID(relationID int64) int64 {
	return areaIDOffset + relationID
}

// BuildBoundaryQuery builds the fallback search for administrative
// boundary relations matching a town name or its institutional-naming
// variants ("X", "X Borough", "Borough of X", "X Borough Council",
// "Metropolitan Borough of X"), scoped to one country and a set of
// admin levels.
func BuildBoundaryQuery(name, countryISO string, adminLevels []string) string {
	esc := regexp.QuoteMeta(strings.TrimSpace(name))
	pattern := fmt.Sprintf(
		`^(%s|%s\s+Borough|Borough\s+of\s+%s|%s\s+Borough\s+Council|Metropolitan\s+Borough\s+of\s+%s)$`,
		esc, esc, esc, esc, esc)

	// The pattern is emitted verbatim: quoting it through %q would
	// double the regex backslashes on the wire.
	return fmt.Sprintf(`[out:json][timeout:60];
relation["boundary"="administrative"]["admin_level"="2"]["ISO3166-1"="%s"]->.country;
.country map_to_area -> .search;
(
  relation(area.search)
    ["boundary"="administrative"]
    ["admin_level"~"^(%s)$"]
    ["name"~"%s"];
);
out tags;`, strings.ToUpper(countryISO), strings.Join(adminLevels, "|"), pattern)
}

// BuildPlacesQuery builds the child-place enumeration query: every
// node, way and relation tagged with one of the place kinds inside the
// relation's area.
func BuildPlacesQuery(relationID int64, kinds []string) string {
	pattern := fmt.Sprintf("^(%s)$", strings.Join(kinds, "|"))
	return fmt.Sprintf(`[out:json][timeout:90];
area(%d)->.a;
(
  node["place"~"%s"](area.a);
  way["place"~"%s"](area.a);
  relation["place"~"%s"](area.a);
);
out tags center;`, AreaID(relationID), pattern, pattern, pattern)
}

// element is the subset of an Overpass element the parsers need.
type element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Tags map[string]string `json:"tags"`
}

type response struct {
	Elements []element `json:"elements"`
}

// ParseBoundaryMatches extracts (relation id, name) pairs from a
// boundary search response. Non-relation elements and elements missing
// an id or name are skipped.
func ParseBoundaryMatches(body []byte) ([]driven.BoundaryMatch, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode boundary response: %w", err)
	}

	var matches []driven.BoundaryMatch
	for _, el := range resp.Elements {
		if el.Type != domain.TypeRelation || el.ID == 0 {
			continue
		}
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		matches = append(matches, driven.BoundaryMatch{RelationID: el.ID, Name: name})
	}
	return matches, nil
}

// ParsePlaces extracts {name, place} pairs from a places response.
// Elements missing either tag are skipped, not fatal.
func ParsePlaces(body []byte) ([]domain.ChildPlace, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}

	var places []domain.ChildPlace
	for _, el := range resp.Elements {
		name := strings.TrimSpace(el.Tags["name"])
		kind := strings.TrimSpace(el.Tags["place"])
		if name == "" || kind == "" {
			continue
		}
		places = append(places, domain.ChildPlace{Name: name, Kind: kind})
	}
	return places, nil
}
