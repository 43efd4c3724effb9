package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/loamworks/gazetteer-cli/internal/connectors/nominatim"
	"github.com/loamworks/gazetteer-cli/internal/connectors/overpass"
	"github.com/loamworks/gazetteer-cli/internal/connectors/wikipedia"
	"github.com/loamworks/gazetteer-cli/internal/core/domain"
)

// Settings is the full configuration surface of the tool.
type Settings struct {
	Search    SearchSettings    `toml:"search"`
	Nominatim NominatimSettings `toml:"nominatim"`
	Overpass  OverpassSettings  `toml:"overpass"`
	Wikipedia WikipediaSettings `toml:"wikipedia"`
	Output    OutputSettings    `toml:"output"`
}

// SearchSettings control candidate search and disambiguation.
type SearchSettings struct {
	// Country is appended to town rows that carry none.
	Country string `toml:"country"`

	// CountryCodes restricts Nominatim results, e.g. "gb".
	CountryCodes string `toml:"country_codes"`

	// Limit is the maximum number of candidates fetched per town.
	Limit int `toml:"limit"`

	// Threshold is the minimum score for an automatic match.
	Threshold int `toml:"threshold"`
}

// NominatimSettings configure the geocoder client.
type NominatimSettings struct {
	BaseURL    string `toml:"base_url"`
	UserAgent  string `toml:"user_agent"`
	IntervalMS int    `toml:"interval_ms"`
}

// OverpassSettings configure the Overpass executor and queries.
type OverpassSettings struct {
	Endpoints   []string `toml:"endpoints"`
	Rounds      int      `toml:"rounds"`
	AdminLevels []string `toml:"admin_levels"`
	PlaceKinds  []string `toml:"place_kinds"`
}

// WikipediaSettings configure enrichment.
type WikipediaSettings struct {
	Enabled    bool   `toml:"enabled"`
	BaseURL    string `toml:"base_url"`
	IntervalMS int    `toml:"interval_ms"`
}

// OutputSettings configure the CSV writers.
type OutputSettings struct {
	// Dir is where output files are written.
	Dir string `toml:"dir"`

	// MaxChildren caps the pivot sheet's child columns.
	MaxChildren int `toml:"max_children"`
}

// userAgent identifies the tool to the public OSM services.
const userAgent = "gazetteer-cli/1.0 (https://github.com/loamworks/gazetteer-cli)"

// Defaults returns the settings used when no config file exists.
func Defaults() Settings {
	return Settings{
		Search: SearchSettings{
			Country:      "United Kingdom",
			CountryCodes: "gb",
			Limit:        10,
			Threshold:    10,
		},
		Nominatim: NominatimSettings{
			BaseURL:    nominatim.DefaultBaseURL,
			UserAgent:  userAgent,
			IntervalMS: 1100,
		},
		Overpass: OverpassSettings{
			Endpoints:   overpass.DefaultEndpoints,
			Rounds:      overpass.DefaultRounds,
			AdminLevels: overpass.DefaultAdminLevels,
			PlaceKinds:  domain.DefaultPlaceKinds,
		},
		Wikipedia: WikipediaSettings{
			Enabled:    true,
			BaseURL:    wikipedia.DefaultBaseURL,
			IntervalMS: 250,
		},
		Output: OutputSettings{
			Dir:         ".",
			MaxChildren: 25,
		},
	}
}

// DefaultPath returns ~/.gazetteer/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".gazetteer", "config.toml"), nil
}

// Load reads settings from the given path, layered over the defaults.
// A missing file yields the defaults; a malformed one is an error.
func Load(path string) (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return settings, nil
}

// Save writes settings to the given path, creating the directory if
// needed. Used to seed an editable config file.
func Save(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Write with restricted permissions
	return os.WriteFile(path, data, 0600)
}
