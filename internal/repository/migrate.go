package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations for one store.
type Migrator struct {
	migrate *migrate.Migrate
	conn    *sql.Conn
}

// Migrator returns a migrator bound to the repository's database.
// The caller must Close it; closing does not close the repository.
func (r *SQLRepository) Migrator(ctx context.Context) (*Migrator, error) {
	migrationsDir, err := fs.Sub(migrationsFS, "migrations/"+r.dialect.name)
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsDir, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	var (
		driver database.Driver
		conn   *sql.Conn
	)
	switch r.dialect.name {
	case DialectSQLite:
		driver, err = migratesqlite.WithInstance(r.db, &migratesqlite.Config{})
	case DialectPostgres, DialectMySQL:
		// A dedicated connection keeps the migration lock and the schema
		// version reads on one session.
		conn, err = r.db.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire connection: %w", err)
		}
		if r.dialect.name == DialectPostgres {
			driver, err = migratepostgres.WithConnection(ctx, conn, &migratepostgres.Config{})
		} else {
			driver, err = migratemysql.WithConnection(ctx, conn, &migratemysql.Config{})
		}
	default:
		err = fmt.Errorf("unsupported dialect %q", r.dialect.name)
	}
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, r.dialect.name, driver)
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return &Migrator{migrate: m, conn: conn}, nil
}

// Up applies all pending migrations.
func (mm *Migrator) Up() error {
	err := mm.migrate.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the last migration.
func (mm *Migrator) Down() error {
	err := mm.migrate.Steps(-1)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// Version returns the current migration version and dirty state.
func (mm *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mm.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the migration version without running migrations.
// Use with caution - this is for recovering from failed migrations.
func (mm *Migrator) Force(version int) error {
	if err := mm.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the migrator's connection. The database stays open; the
// migrate instance is not closed because its drivers would close it.
func (mm *Migrator) Close() error {
	if mm.conn == nil {
		return nil
	}
	return mm.conn.Close()
}

// Migrate applies all pending migrations to the repository's database.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	mm, err := r.Migrator(ctx)
	if err != nil {
		return err
	}
	defer mm.Close()

	if err := mm.Up(); err != nil {
		return err
	}

	version, dirty, err := mm.Version()
	if err != nil {
		return err
	}
	log.Printf("[SQLRepository] Schema at version %d (dirty=%v, dialect=%s)", version, dirty, r.dialect.name)
	return nil
}
