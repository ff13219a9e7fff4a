package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tcg-collection-api/internal/config"
	"tcg-collection-api/internal/logging"
	"tcg-collection-api/internal/repository"
)

var rootCmd = &cobra.Command{
	Use:   "tcgctl",
	Short: "Maintenance CLI for the TCG collection API",
	Long: `tcgctl manages the catalog store used by the TCG collection API.
Connection settings are read from the same environment variables (and .env file) as the server.

Examples:

  tcgctl migrate up
  tcgctl sync expansions
  tcgctl sync backfill
  tcgctl sync set base1
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Commands return their errors so that deferred
// cleanup runs before the process exits.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fail("%v", err)
	}
}

// Register subcommands
func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(syncCmd)
}

var (
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func fail(format string, args ...interface{}) {
	red.Fprint(os.Stderr, "❌ ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// openStore loads the configuration and connects to the catalog store.
// The schema is left untouched.
func openStore() (*config.Config, *repository.SQLRepository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.Log)

	repo, err := repository.Open(cfg.Store.NormalizedType(), cfg.Store.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to %s store: %w", cfg.Store.NormalizedType(), err)
	}
	return cfg, repo, nil
}
