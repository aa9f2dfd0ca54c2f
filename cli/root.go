// Package cli contains the helpsync command line interface
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"helpsync/config"
	"helpsync/orchestrator"
)

var (
	cfgFile   string
	jsonPath  string
	showCalls bool
	settings  *config.Settings
	app       *orchestrator.App
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "helpsync",
	Short: "Sync help-center articles into the knowledge base",
	Long: `helpsync fetches help-center articles, filters test and empty articles,
compares them with a knowledge source and uploads or deletes the difference.

Example usage:
  helpsync fetch                       # Fetch and classify help-center articles
  helpsync compare -k ks_123           # Compare with a knowledge source
  helpsync upload -k ks_123            # Upload every new article
  helpsync delete -k ks_123 --yes      # Delete orphaned articles
  helpsync sources list                # List knowledge sources`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app == nil {
			return
		}
		if showCalls {
			printCalls(cmd.OutOrStdout(), app)
		}
		app.Close()
		app = nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .helpsync.yaml)")
	rootCmd.PersistentFlags().StringVar(&jsonPath, "json", "", "also write the result as JSON to this file")
	rootCmd.PersistentFlags().BoolVar(&showCalls, "calls", false, "print the remote call log when done")
}

// initApp loads configuration unless it was provided already and wires the session
func initApp(ctx context.Context) error {
	if settings == nil {
		s, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		settings = s
	}
	app = orchestrator.New(ctx, settings)
	return nil
}
