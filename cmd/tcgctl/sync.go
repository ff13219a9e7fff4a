package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tcg-collection-api/internal/model"
	"tcg-collection-api/internal/provider"
	"tcg-collection-api/internal/service"
	"tcg-collection-api/internal/syncstate"
)

var syncMigrate bool

func init() {
	syncCmd.PersistentFlags().BoolVar(&syncMigrate, "migrate", true, "Apply pending schema migrations before syncing")
	syncCmd.AddCommand(syncExpansionsCmd, syncBackfillCmd, syncSetCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the card-data provider into the catalog store",
	Long: `Fetch expansions and cards from the card-data provider and insert the ones not stored yet.

Examples:
  tcgctl sync expansions          # Insert new expansions
  tcgctl sync backfill            # Fetch cards for every expansion that has none
  tcgctl sync set base1           # Fetch the cards of one expansion
`,
}

// withSyncService wires a sync service against the configured store and
// provider. Reports go to Redis only when the server is configured for it.
// Ctrl-C cancels the run.
func withSyncService(fn func(ctx context.Context, s *service.SyncService) error) error {
	cfg, repo, err := openStore()
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if syncMigrate {
		if err := repo.Migrate(ctx); err != nil {
			return fmt.Errorf("error migrating store: %w", err)
		}
	}

	var state syncstate.Store = syncstate.NewMemoryStore()
	if strings.EqualFold(cfg.SyncState.Type, "redis") {
		rs, err := syncstate.NewRedisStore(syncstate.RedisConfig{
			Addr:      cfg.SyncState.RedisAddress(),
			Password:  cfg.SyncState.RedisPassword,
			DB:        cfg.SyncState.RedisDB,
			KeyPrefix: cfg.SyncState.KeyPrefix,
			TTL:       cfg.SyncState.TTL,
		})
		if err != nil {
			yellow.Fprintf(os.Stderr, "⚠️  Sync report will not be shared: %v\n", err)
		} else {
			state = rs
		}
	}
	defer state.Close()

	client := provider.NewClient(provider.Config{
		BaseURL:           cfg.Provider.BaseURL,
		APIKey:            cfg.Provider.APIKey,
		PageSize:          cfg.Provider.PageSize,
		Timeout:           cfg.Provider.Timeout,
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
	})

	return fn(ctx, service.NewSyncService(repo, client, state))
}

func printReport(report *model.SyncReport) {
	cyan.Printf("📋 Run %s (%s)\n", report.RunID, report.Key())
	fmt.Printf("   fetched:  %d\n", report.Fetched)
	green.Printf("   inserted: %d\n", report.Inserted)
	if report.Skipped > 0 {
		yellow.Printf("   skipped:  %d\n", report.Skipped)
	}
	if report.Failed > 0 {
		red.Printf("   failed:   %d (%s)\n", report.Failed, strings.Join(report.FailedSets, ", "))
	}
	if len(report.EmptySets) > 0 {
		fmt.Printf("   empty:    %s\n", strings.Join(report.EmptySets, ", "))
	}
	fmt.Printf("   took:     %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
}

var syncExpansionsCmd = &cobra.Command{
	Use:   "expansions",
	Short: "Insert expansions not stored yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSyncService(func(ctx context.Context, s *service.SyncService) error {
			report, err := s.RefreshExpansions(ctx)
			if err != nil {
				return fmt.Errorf("expansion sync failed: %w", err)
			}
			green.Println("✅ Expansions updated successfully.")
			printReport(report)
			return nil
		})
	},
}

var syncBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Fetch cards for every expansion that has none stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSyncService(func(ctx context.Context, s *service.SyncService) error {
			report, err := s.BackfillMissingCardSets(ctx)
			if err != nil {
				return fmt.Errorf("backfill failed: %w", err)
			}
			green.Println("✅ Missing card sets backfilled.")
			printReport(report)
			return nil
		})
	},
}

var syncSetCmd = &cobra.Command{
	Use:   "set <set-id>",
	Short: "Fetch the cards of one expansion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSyncService(func(ctx context.Context, s *service.SyncService) error {
			result := s.SyncCardsForExpansion(ctx, args[0])
			if !result.Success {
				return fmt.Errorf("sync of set %s failed: %s", args[0], result.Error)
			}
			green.Printf("✅ %s\n", result.Message)
			return nil
		})
	},
}
