// Package syncstate keeps the latest report of each catalog sync run.
package syncstate

import (
	"context"
	"slices"
	"strings"

	"tcg-collection-api/internal/model"
)

// Store records sync reports. One report is kept per SyncReport.Key, so a
// new run of the same kind replaces the previous one.
// This abstraction allows swapping between memory (single instance)
// and Redis (shared across instances) without changing the services.
type Store interface {
	// Record saves a report, replacing the previous one with the same key.
	Record(ctx context.Context, report model.SyncReport) error

	// Latest returns the stored reports, most recently started first.
	Latest(ctx context.Context) ([]model.SyncReport, error)

	// Backend names the storage backend ("memory" or "redis").
	Backend() string

	// Close releases the store's resources.
	Close() error
}

func sortReports(reports []model.SyncReport) {
	slices.SortFunc(reports, func(a, b model.SyncReport) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Key(), b.Key())
	})
}
