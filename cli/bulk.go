package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"helpsync/reconcile"
	"helpsync/types"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload new articles to a knowledge source",
	Long: `Compare, then create every new article (or the ones selected with --ids)
one request at a time. A failing article never stops the batch.

Examples:
  helpsync upload -k ks_123                 # Upload every new article
  helpsync upload -k ks_123 --ids 101,102   # Upload a subset`,
	RunE: runUpload,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete orphaned articles from a knowledge source",
	Long: `Compare, then delete every orphaned article (or the ones selected with --ids).
Without --yes the orphaned articles are only listed.

Examples:
  helpsync delete -k ks_123            # List what would be deleted
  helpsync delete -k ks_123 --yes      # Delete every orphaned article`,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(deleteCmd)

	for _, cmd := range []*cobra.Command{uploadCmd, deleteCmd} {
		addKnowledgeSourceFlag(cmd)
		cmd.Flags().StringSlice("ids", nil, "only these article ids")
	}
	deleteCmd.Flags().Bool("yes", false, "confirm the deletion")
}

func runUpload(cmd *cobra.Command, args []string) error {
	if _, err := compare(cmd); err != nil {
		return err
	}

	ids, _ := cmd.Flags().GetStringSlice("ids")
	report, err := app.Runner.UploadNew(cmd.Context(), ids)
	if err != nil {
		return err
	}
	return finishReport(cmd, report)
}

func runDelete(cmd *cobra.Command, args []string) error {
	result, err := compare(cmd)
	if err != nil {
		return err
	}

	ids, _ := cmd.Flags().GetStringSlice("ids")
	selected := reconcile.SelectOrphaned(*result, ids)
	if len(selected) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to delete")
		return nil
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		printOrphaned(cmd.OutOrStdout(), selected)
		return fmt.Errorf("refusing to delete %d articles from %s without --yes", len(selected), result.KnowledgeSourceID)
	}

	report, err := app.Runner.DeleteOrphaned(cmd.Context(), ids)
	if err != nil {
		return err
	}
	return finishReport(cmd, report)
}

// finishReport prints and exports a report and fails when any item failed
func finishReport(cmd *cobra.Command, report *types.SyncReport) error {
	out := cmd.OutOrStdout()
	printReport(out, report)
	if err := exportJSON(out, report); err != nil {
		return err
	}
	if report.FailureCount > 0 {
		return fmt.Errorf("%d of %d articles failed", report.FailureCount, report.Total())
	}
	return nil
}

func printReport(w io.Writer, r *types.SyncReport) {
	section(w, fmt.Sprintf("%s results", r.Operation), r.Total())

	t := NewTable(w, []string{"ID", "NAME", "RESULT", "STATUS", "TIME", "DETAIL"})
	for _, item := range r.Items {
		result := "✓"
		if item.Outcome == types.OutcomeFailure {
			result = "✗"
		}
		status := "-"
		if item.StatusCode != 0 {
			status = fmt.Sprint(item.StatusCode)
		}
		t.AddRow(item.ItemID, truncate(item.Name, 40), result, status,
			item.Duration.Round(time.Millisecond).String(), truncate(item.Detail, 60))
	}
	t.Render()

	fmt.Fprintf(w, "\nSucceeded: %d | Failed: %d | Success rate: %.1f%%\n",
		r.SuccessCount, r.FailureCount, r.SuccessRate())
}
