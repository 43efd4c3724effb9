package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/loamworks/gazetteer-cli/internal/adapters/driven/tabular"
	"github.com/loamworks/gazetteer-cli/internal/adapters/driving/tui"
	"github.com/loamworks/gazetteer-cli/internal/core/domain"
)

var reviewCmd = &cobra.Command{
	Use:   "review [needs_review.csv]",
	Short: "Interactively settle ambiguous towns",
	Long: `Walks through every town the resolve phase could not settle and lets
you pick the right boundary per town. Picks are appended to
` + tabular.ResolvedFile + ` and the review sheet is rewritten with whatever
is still undecided.

With no argument, reads ` + tabular.ReviewFile + ` from the output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("review needs an interactive terminal")
	}

	reviewPath := filepath.Join(outputDir, tabular.ReviewFile)
	if len(args) > 0 {
		reviewPath = args[0]
	}

	entries, err := tabular.ReadReview(reviewPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		cmd.Println("Nothing to review.")
		return nil
	}

	picks, remaining, err := tui.Run(entries)
	if err != nil {
		return err
	}

	if len(picks) > 0 {
		resolvedPath := filepath.Join(outputDir, tabular.ResolvedFile)
		if err := tabular.AppendResolved(resolvedPath, picks); err != nil {
			return err
		}
	}
	if err := tabular.WriteReviewFile(reviewPath, remaining); err != nil {
		return err
	}

	cmd.Printf("Confirmed %d towns, %d still need review.\n",
		len(picks), countTowns(remaining))
	return nil
}

// countTowns counts distinct towns in review entries.
func countTowns(entries []domain.ReviewEntry) int {
	seen := make(map[string]struct{})
	for _, e := range entries {
		seen[e.Town.QueryString()] = struct{}{}
	}
	return len(seen)
}
