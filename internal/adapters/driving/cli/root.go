// Package cli wires the cobra command tree to the core services.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loamworks/gazetteer-cli/internal/adapters/driven/cache/sqlite"
	"github.com/loamworks/gazetteer-cli/internal/adapters/driven/config/file"
	"github.com/loamworks/gazetteer-cli/internal/connectors/nominatim"
	"github.com/loamworks/gazetteer-cli/internal/connectors/overpass"
	"github.com/loamworks/gazetteer-cli/internal/connectors/wikipedia"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
	"github.com/loamworks/gazetteer-cli/internal/core/services"
	"github.com/loamworks/gazetteer-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgPath   string
	outputDir string
	cacheDir  string
	noCache   bool
	verbose   bool
)

// Wired in initServices. Commands that need them check for nil so a
// partially-configured environment fails with a clear message.
var (
	settings   file.Settings
	cacheStore *sqlite.Store
	batch      *services.Batch
)

var rootCmd = &cobra.Command{
	Use:   "gazetteer",
	Short: "Resolve town names to OSM boundaries and list their localities",
	Long: `gazetteer turns a spreadsheet of town names into OpenStreetMap
administrative boundaries, then enumerates the place-tagged localities
inside each boundary.

The resolve phase scores Nominatim candidates and writes a resolved
map plus a review sheet for ambiguous towns. The generate phase walks
the resolved map and writes a long-form locality table and a wide
pivot table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE:  initServices,
	PersistentPostRunE: closeServices,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion overrides the build version shown by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.gazetteer/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "directory for output files (default from config)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "response cache directory (default ~/.gazetteer/cache)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging to stderr")
}

// initServices loads settings and builds the service graph. Commands
// that only touch local state skip the wiring.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	path := cfgPath
	if path == "" {
		var err error
		if path, err = file.DefaultPath(); err != nil {
			return err
		}
	}

	var err error
	settings, err = file.Load(path)
	if err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = settings.Output.Dir
	}

	// Commands that only touch local state manage their own resources.
	switch cmd.Name() {
	case "version", "help", "init", "path", "stats", "prune", "review":
		return nil
	}

	var cache driven.ResponseCache
	if !noCache {
		cacheStore, err = sqlite.NewStore(cacheDir)
		if err != nil {
			return fmt.Errorf("opening response cache: %w", err)
		}
		cache = cacheStore.ResponseCache()
		logger.Debug("response cache: %s (run %s)", cacheStore.Path(), cacheStore.RunID())
	}

	searcher := nominatim.NewClient(nominatim.Config{
		BaseURL:      settings.Nominatim.BaseURL,
		UserAgent:    settings.Nominatim.UserAgent,
		CountryCodes: settings.Search.CountryCodes,
		Interval:     millis(settings.Nominatim.IntervalMS),
	}, cache)

	executor := overpass.NewExecutor(overpass.Config{
		Endpoints: settings.Overpass.Endpoints,
		Rounds:    settings.Overpass.Rounds,
		UserAgent: settings.Nominatim.UserAgent,
	})
	boundaries := overpass.NewClient(executor, cache,
		settings.Search.CountryCodes, settings.Overpass.AdminLevels, settings.Overpass.PlaceKinds)

	var enricher driven.Enricher
	if settings.Wikipedia.Enabled {
		enricher = wikipedia.NewClient(wikipedia.Config{
			BaseURL:   settings.Wikipedia.BaseURL,
			UserAgent: settings.Nominatim.UserAgent,
			Interval:  millis(settings.Wikipedia.IntervalMS),
		})
	}

	resolver := services.NewResolver(searcher, boundaries, settings.Search.Threshold)
	resolver.SetLimit(settings.Search.Limit)
	localities := services.NewLocalityService(boundaries, enricher)

	batch = services.NewBatch(resolver, localities)
	batch.Printf = cmd.Printf
	return nil
}

// millis converts a config interval to a duration, leaving zero for
// the connector defaults.
func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func closeServices(_ *cobra.Command, _ []string) error {
	if cacheStore != nil {
		return cacheStore.Close()
	}
	return nil
}
