package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"helpsync/types"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage knowledge sources",
}

var sourcesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List knowledge sources",
	RunE:    runSourcesList,
}

var sourcesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a knowledge source",
	Long: `Create a knowledge source.

Examples:
  helpsync sources create --id grab_passenger_sg --name "Passenger SG"`,
	RunE: runSourcesCreate,
}

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a knowledge source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesDelete,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesListCmd, sourcesCreateCmd, sourcesDeleteCmd)

	sourcesCreateCmd.Flags().String("id", "", "knowledge source id")
	sourcesCreateCmd.Flags().String("name", "", "knowledge source name")
	_ = sourcesCreateCmd.MarkFlagRequired("id")
	_ = sourcesCreateCmd.MarkFlagRequired("name")

	sourcesDeleteCmd.Flags().Bool("yes", false, "confirm the deletion")
}

func runSourcesList(cmd *cobra.Command, args []string) error {
	if err := settings.ValidateAda(); err != nil {
		return err
	}
	sources, err := app.Ada.ListSources(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	section(out, "Knowledge sources", len(sources))
	t := NewTable(out, []string{"ID", "NAME"})
	for _, s := range sources {
		t.AddRow(s.ID, s.Name)
	}
	t.Render()

	return exportJSON(out, sources)
}

func runSourcesCreate(cmd *cobra.Command, args []string) error {
	if err := settings.ValidateAda(); err != nil {
		return err
	}
	id, _ := cmd.Flags().GetString("id")
	name, _ := cmd.Flags().GetString("name")

	if err := app.Ada.CreateSource(cmd.Context(), types.KnowledgeSource{ID: id, Name: name}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created knowledge source %s\n", id)
	return nil
}

func runSourcesDelete(cmd *cobra.Command, args []string) error {
	if err := settings.ValidateAda(); err != nil {
		return err
	}
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return fmt.Errorf("refusing to delete knowledge source %s without --yes", args[0])
	}

	if err := app.Ada.DeleteSource(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted knowledge source %s\n", args[0])
	return nil
}
