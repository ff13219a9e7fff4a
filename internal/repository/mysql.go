package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// NewMySQLRepository opens a MySQL or MariaDB catalog database.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true&multiStatements=true"
func NewMySQLRepository(dsn string) (*SQLRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	log.Printf("[SQLRepository] Initialized MySQL with pool: max=%d, idle=%d", 25, 10)
	return newSQLRepository(db, DialectMySQL), nil
}
