package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, Defaults(), settings)
	assert.Equal(t, "gb", settings.Search.CountryCodes)
	assert.Equal(t, 10, settings.Search.Threshold)
	assert.Equal(t, 25, settings.Output.MaxChildren)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[search]
country = "Ireland"
country_codes = "ie"

[overpass]
rounds = 3

[wikipedia]
enabled = false
`), 0600))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Ireland", settings.Search.Country)
	assert.Equal(t, "ie", settings.Search.CountryCodes)
	assert.Equal(t, 3, settings.Overpass.Rounds)
	assert.False(t, settings.Wikipedia.Enabled)

	// Untouched sections keep their defaults.
	assert.Equal(t, 10, settings.Search.Limit)
	assert.Equal(t, Defaults().Overpass.Endpoints, settings.Overpass.Endpoints)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[search`), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want := Defaults()
	want.Search.Country = "France"
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
