package model

import "time"

// Sync run kinds.
const (
	SyncKindExpansions = "expansions"
	SyncKindBackfill   = "backfill"
	SyncKindSet        = "set"
)

// SyncReport summarizes one sync run against the card-data provider.
type SyncReport struct {
	RunID      string    `json:"runId"`
	Kind       string    `json:"kind"`
	Scope      string    `json:"scope,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Fetched    int       `json:"fetched"`
	Inserted   int       `json:"inserted"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	FailedSets []string  `json:"failedSets,omitempty"`
	EmptySets  []string  `json:"emptySets,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Key identifies the report slot a run overwrites: one per kind, and one per
// set for single-set syncs.
func (r SyncReport) Key() string {
	if r.Scope == "" {
		return r.Kind
	}
	return r.Kind + ":" + r.Scope
}

// SetSyncResult is the outcome of an on-demand single-expansion sync.
type SetSyncResult struct {
	Success bool   `json:"success"`
	SetID   string `json:"setId"`
	Added   int    `json:"added"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
