package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"helpsync/types"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare production articles with a knowledge source",
	Long: `Fetch every article of a knowledge source and partition the production
articles into existing, new and orphaned.

Examples:
  helpsync compare                     # Configured knowledge source
  helpsync compare -k ks_123           # Another knowledge source
  helpsync compare --json diff.json    # Export the comparison`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	addKnowledgeSourceFlag(compareCmd)
}

func addKnowledgeSourceFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("knowledge-source", "k", "", "knowledge source id (default from config)")
	cmd.Flags().String("user-type", "", "user type of the source articles")
	cmd.Flags().String("locale", "", "locale of the source articles")
}

// compare runs the comparison for the command's flags and returns it
func compare(cmd *cobra.Command) (*types.ComparisonResult, error) {
	if err := applySourceFlags(cmd); err != nil {
		return nil, err
	}
	ks, _ := cmd.Flags().GetString("knowledge-source")
	if err := app.Runner.Compare(cmd.Context(), ks); err != nil {
		return nil, err
	}
	return app.State.Comparison(), nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	result, err := compare(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printComparison(out, result)
	return exportJSON(out, result)
}

func printComparison(w io.Writer, c *types.ComparisonResult) {
	fmt.Fprintf(w, "Knowledge source %s: %d existing, %d new, %d orphaned (%d pages fetched)\n",
		c.KnowledgeSourceID, len(c.Existing), len(c.New), len(c.Orphaned), c.PagesFetched)
	if c.Truncated {
		fmt.Fprintln(w, "⚠️  The knowledge source listing was truncated; orphaned articles may be missing")
	}

	section(w, "Existing", len(c.Existing))
	t := NewTable(w, []string{"ID", "NAME", "LENGTH"})
	for _, pair := range c.Existing {
		t.AddRow(pair.Source.ID, truncate(pair.Source.Name, 60), fmt.Sprint(len(pair.Source.CleanedBody)))
	}
	t.Render()

	section(w, "New", len(c.New))
	t = NewTable(w, []string{"ID", "NAME", "LENGTH"})
	for _, a := range c.New {
		t.AddRow(a.ID, truncate(a.Name, 60), fmt.Sprint(len(a.CleanedBody)))
	}
	t.Render()

	printOrphaned(w, c.Orphaned)
}

func printOrphaned(w io.Writer, orphaned []types.DestinationArticle) {
	section(w, "Orphaned", len(orphaned))
	t := NewTable(w, []string{"ID", "NAME", "LENGTH"})
	for _, a := range orphaned {
		t.AddRow(a.ID.String(), truncate(a.Name, 60), fmt.Sprint(len(a.Content)))
	}
	t.Render()
}
