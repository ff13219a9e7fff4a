package syncstate

import (
	"context"
	"sync"

	"tcg-collection-api/internal/model"
)

// MemoryStore is an in-memory implementation of Store.
// Use this for development/testing or single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]model.SyncReport
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]model.SyncReport)}
}

// Record saves a report.
func (s *MemoryStore) Record(ctx context.Context, report model.SyncReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[report.Key()] = report
	return nil
}

// Latest returns the stored reports, most recently started first.
func (s *MemoryStore) Latest(ctx context.Context) ([]model.SyncReport, error) {
	s.mu.RLock()
	reports := make([]model.SyncReport, 0, len(s.reports))
	for _, r := range s.reports {
		reports = append(reports, r)
	}
	s.mu.RUnlock()

	sortReports(reports)
	return reports, nil
}

// Backend returns "memory".
func (s *MemoryStore) Backend() string { return "memory" }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
