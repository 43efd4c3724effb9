package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loamworks/gazetteer-cli/internal/adapters/driven/tabular"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <towns.csv>",
	Short: "Resolve town names to OSM boundary identifiers",
	Long: `Reads a CSV of town names and resolves each one to an OpenStreetMap
administrative boundary. Confident matches go to ` + tabular.ResolvedFile + `;
ambiguous towns get one row per candidate in ` + tabular.ReviewFile + `.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if batch == nil {
		return errors.New("batch service not configured")
	}

	towns, err := tabular.NewTownReader(args[0], settings.Search.Country).ReadTowns()
	if err != nil {
		return err
	}
	if len(towns) == 0 {
		return fmt.Errorf("no towns found in %s", args[0])
	}
	cmd.Printf("Resolving %d towns...\n", len(towns))

	writer, err := tabular.NewResolutionCSV(outputDir)
	if err != nil {
		return err
	}

	summary, runErr := batch.ResolveAll(cmd.Context(), towns, writer)
	if closeErr := writer.Close(); runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		return runErr
	}

	cmd.Printf("\nResolved %d, review %d, failed %d.\n",
		summary.Resolved, summary.Review, summary.Failed)
	cmd.Printf("Wrote %s and %s.\n",
		filepath.Join(outputDir, tabular.ResolvedFile),
		filepath.Join(outputDir, tabular.ReviewFile))
	if summary.Review > 0 {
		cmd.Println("Run 'gazetteer review' to settle the ambiguous towns.")
	}
	return nil
}
