package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/loamworks/gazetteer-cli/internal/adapters/driven/cache/sqlite"
)

var cachePruneAge time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache location and entry count",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := sqlite.NewStore(cacheDir)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Printf("%s: %d cached responses\n", store.Path(), n)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cached responses older than a cutoff",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := sqlite.NewStore(cacheDir)
		if err != nil {
			return err
		}
		defer store.Close()

		pruned, err := store.Prune(cmd.Context(), cachePruneAge)
		if err != nil {
			return err
		}
		cmd.Printf("Pruned %d cached responses.\n", pruned)
		return nil
	},
}

func init() {
	cachePruneCmd.Flags().DurationVar(&cachePruneAge, "older-than", 30*24*time.Hour,
		"delete entries last touched before now minus this duration")
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
