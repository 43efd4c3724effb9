package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loamworks/gazetteer-cli/internal/adapters/driven/tabular"
)

var generateNoWiki bool

var generateCmd = &cobra.Command{
	Use:   "generate [town_id_map.csv]",
	Short: "Enumerate localities inside each resolved boundary",
	Long: `Walks the resolved map and queries Overpass for the place-tagged
localities inside each boundary relation. Writes a long-form table
(` + tabular.LongFile + `) and a wide pivot table (` + tabular.PivotFile + `).

With no argument, reads ` + tabular.ResolvedFile + ` from the output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateNoWiki, "no-wiki", false, "skip Wikipedia enrichment")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if batch == nil {
		return errors.New("batch service not configured")
	}

	path := filepath.Join(outputDir, tabular.ResolvedFile)
	if len(args) > 0 {
		path = args[0]
	}

	rows, err := tabular.ReadResolved(path)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no resolved boundaries found in %s", path)
	}
	cmd.Printf("Enumerating localities for %d boundaries...\n", len(rows))

	writer, err := tabular.NewLocalityCSV(outputDir, settings.Output.MaxChildren)
	if err != nil {
		return err
	}

	enrich := settings.Wikipedia.Enabled && !generateNoWiki
	summary, runErr := batch.GenerateAll(cmd.Context(), rows, writer, enrich)
	if closeErr := writer.Close(); runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		return runErr
	}

	cmd.Printf("\n%d parents, %d localities, %d skipped, %d failed.\n",
		summary.Parents, summary.Children, summary.Skipped, summary.Failed)
	cmd.Printf("Wrote %s and %s.\n",
		filepath.Join(outputDir, tabular.LongFile),
		filepath.Join(outputDir, tabular.PivotFile))
	return nil
}
