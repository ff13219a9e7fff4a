package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tcg-collection-api/internal/model"
	"tcg-collection-api/internal/provider"
	"tcg-collection-api/internal/repository"
	"tcg-collection-api/internal/syncstate"
	"tcg-collection-api/pkg/uid"
)

// CatalogProvider fetches the upstream catalog. *provider.Client implements it.
type CatalogProvider interface {
	GetSets(ctx context.Context) ([]provider.Set, error)
	GetCardsBySet(ctx context.Context, setID string) ([]provider.Card, error)
}

// SyncService mirrors the provider's expansions and cards into the local store.
// Rows are only ever inserted; an id already stored is left as it is.
type SyncService struct {
	repo     repository.CatalogRepository
	provider CatalogProvider
	state    syncstate.Store
	now      func() time.Time
}

// NewSyncService creates a new sync service. state may be nil.
func NewSyncService(repo repository.CatalogRepository, p CatalogProvider, state syncstate.Store) *SyncService {
	return &SyncService{
		repo:     repo,
		provider: p,
		state:    state,
		now:      time.Now,
	}
}

func (s *SyncService) begin(kind, scope string) *model.SyncReport {
	return &model.SyncReport{
		RunID:     uid.New(),
		Kind:      kind,
		Scope:     scope,
		StartedAt: s.now().UTC(),
	}
}

// finish stamps the report and records it. Recording failures are only logged.
func (s *SyncService) finish(ctx context.Context, report *model.SyncReport, err error) {
	report.FinishedAt = s.now().UTC()
	if err != nil {
		report.Error = err.Error()
	}

	log.Printf("[SyncService] Run %s (%s) finished: fetched=%d inserted=%d skipped=%d failed=%d",
		report.RunID, report.Key(), report.Fetched, report.Inserted, report.Skipped, report.Failed)

	if s.state == nil {
		return
	}
	if recErr := s.state.Record(ctx, *report); recErr != nil {
		log.Printf("[SyncService] Failed to record run %s: %v", report.RunID, recErr)
	}
}

// RefreshExpansions fetches every expansion from the provider and inserts the
// ones not stored yet. Entries missing required fields are skipped.
// A provider failure inserts nothing.
func (s *SyncService) RefreshExpansions(ctx context.Context) (*model.SyncReport, error) {
	report := s.begin(model.SyncKindExpansions, "")

	sets, err := s.provider.GetSets(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUpstream, err)
		s.finish(ctx, report, err)
		return report, err
	}
	report.Fetched = len(sets)

	expansions := make([]model.Expansion, 0, len(sets))
	for _, set := range sets {
		exp, err := set.ToExpansion()
		if err != nil {
			log.Printf("[SyncService] Skipping expansion: %v", err)
			report.Skipped++
			continue
		}
		expansions = append(expansions, exp)
	}

	inserted, err := s.repo.InsertExpansions(ctx, expansions)
	if err != nil {
		err = fmt.Errorf("failed to store expansions: %w", err)
		s.finish(ctx, report, err)
		return report, err
	}
	report.Inserted = inserted

	s.finish(ctx, report, nil)
	return report, nil
}

type setOutcome struct {
	fetched  int
	inserted int
	skipped  int
}

// syncSet fetches one expansion's cards and inserts the new ones.
// Provider failures are wrapped with ErrUpstream.
func (s *SyncService) syncSet(ctx context.Context, setID string) (setOutcome, error) {
	var out setOutcome

	fetched, err := s.provider.GetCardsBySet(ctx, setID)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	out.fetched = len(fetched)

	cards := make([]model.Card, 0, len(fetched))
	for _, c := range fetched {
		card, err := c.ToCard()
		if err != nil {
			log.Printf("[SyncService] Skipping card in set %s: %v", setID, err)
			out.skipped++
			continue
		}
		if card.ExpansionID != setID {
			log.Printf("[SyncService] Skipping card %s: belongs to set %s, not %s", card.ID, card.ExpansionID, setID)
			out.skipped++
			continue
		}
		cards = append(cards, card)
	}

	inserted, err := s.repo.InsertCards(ctx, cards)
	if err != nil {
		return out, fmt.Errorf("failed to store cards for set %s: %w", setID, err)
	}
	out.inserted = inserted
	return out, nil
}

// BackfillMissingCardSets syncs the cards of every expansion that has none
// stored. Provider failures are logged and counted; they never abort the run.
// Expansions without released cards stay empty and are fetched again on
// every run.
func (s *SyncService) BackfillMissingCardSets(ctx context.Context) (*model.SyncReport, error) {
	report := s.begin(model.SyncKindBackfill, "")

	ids, err := s.repo.ExpansionIDsWithoutCards(ctx)
	if err != nil {
		s.finish(ctx, report, err)
		return report, err
	}

	log.Printf("[SyncService] Backfilling %d expansions without cards", len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			s.finish(ctx, report, err)
			return report, err
		}

		out, err := s.syncSet(ctx, id)
		report.Fetched += out.fetched
		report.Skipped += out.skipped
		if err != nil {
			if !errors.Is(err, ErrUpstream) {
				s.finish(ctx, report, err)
				return report, err
			}
			log.Printf("[SyncService] Backfill of set %s failed: %v", id, err)
			report.Failed++
			report.FailedSets = append(report.FailedSets, id)
			continue
		}

		report.Inserted += out.inserted
		if out.fetched == 0 {
			report.EmptySets = append(report.EmptySets, id)
		}
	}

	s.finish(ctx, report, nil)
	return report, nil
}

// SyncCardsForExpansion fetches and stores the cards of one expansion on
// request. An id that is not a stored expansion is reported as a successful
// sync that found no cards, without calling the provider.
func (s *SyncService) SyncCardsForExpansion(ctx context.Context, setID string) *model.SetSyncResult {
	report := s.begin(model.SyncKindSet, setID)
	result := &model.SetSyncResult{SetID: setID}

	exists, err := s.repo.ExpansionExists(ctx, setID)
	if err != nil {
		s.finish(ctx, report, err)
		result.Error = fmt.Sprintf("failed to look up set %s", setID)
		return result
	}

	if !exists {
		s.finish(ctx, report, nil)
		result.Success = true
		result.Message = fmt.Sprintf("No cards found for set %s.", setID)
		return result
	}

	out, err := s.syncSet(ctx, setID)
	report.Fetched = out.fetched
	report.Skipped = out.skipped
	report.Inserted = out.inserted
	if err != nil {
		s.finish(ctx, report, err)
		log.Printf("[SyncService] Sync of set %s failed: %v", setID, err)
		result.Error = err.Error()
		return result
	}

	s.finish(ctx, report, nil)
	result.Success = true
	result.Added = out.inserted
	if out.fetched == 0 {
		result.Message = fmt.Sprintf("No cards found for set %s.", setID)
	} else {
		result.Message = fmt.Sprintf("Added %d new cards to set %s.", out.inserted, setID)
	}
	return result
}

// LatestRuns returns the most recent sync reports.
func (s *SyncService) LatestRuns(ctx context.Context) ([]model.SyncReport, error) {
	if s.state == nil {
		return []model.SyncReport{}, nil
	}
	return s.state.Latest(ctx)
}
