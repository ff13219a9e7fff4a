package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tcg-collection-api/internal/repository"
)

var forceVersion int

func init() {
	migrateForceCmd.Flags().IntVar(&forceVersion, "version", -1, "Version to record without running migrations")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd, migrateForceCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the catalog schema",
	Long: `Apply, roll back, or inspect the embedded schema migrations.

Examples:
  tcgctl migrate up               # Apply all pending migrations
  tcgctl migrate down             # Roll back the last migration
  tcgctl migrate version          # Show the current schema version
  tcgctl migrate force --version 1  # Clear a dirty state at version 1
`,
}

// withMigrator opens the store, hands a migrator to fn, and releases both.
func withMigrator(fn func(m *repository.Migrator) error) error {
	_, repo, err := openStore()
	if err != nil {
		return err
	}
	defer repo.Close()

	m, err := repo.Migrator(context.Background())
	if err != nil {
		return fmt.Errorf("error preparing migrations: %w", err)
	}
	defer m.Close()

	return fn(m)
}

func printVersion(m *repository.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	cyan.Printf("📊 Schema version: %d", version)
	if dirty {
		yellow.Print(" (dirty)")
	}
	fmt.Println()
	return nil
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *repository.Migrator) error {
			if err := m.Up(); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			green.Println("✅ Schema is up to date.")
			return printVersion(m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *repository.Migrator) error {
			if err := m.Down(); err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			green.Println("✅ Rolled back 1 migration.")
			return printVersion(m)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(printVersion)
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force",
	Short: "Record a schema version without running migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if forceVersion < 0 {
			return fmt.Errorf("--version is required")
		}
		return withMigrator(func(m *repository.Migrator) error {
			if err := m.Force(forceVersion); err != nil {
				return fmt.Errorf("force failed: %w", err)
			}
			yellow.Printf("⚠️  Schema version forced to %d\n", forceVersion)
			return nil
		})
	},
}
