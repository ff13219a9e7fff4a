package service

import (
	"context"
	"errors"
	"log"

	"tcg-collection-api/internal/model"
	"tcg-collection-api/internal/repository"
)

// CollectionService manages owned quantities and the collection views.
type CollectionService struct {
	repo repository.CollectionRepository
}

// NewCollectionService creates a new collection service.
func NewCollectionService(repo repository.CollectionRepository) *CollectionService {
	return &CollectionService{repo: repo}
}

// AdjustQuantity adds delta to a card's owned quantity, clamped at zero.
// The entry is created on the first positive change and removed when the
// quantity reaches zero; its collection number is kept while it exists.
// It returns the stored entry, or nil when the card is not owned afterwards.
func (s *CollectionService) AdjustQuantity(ctx context.Context, cardID string, delta int) (*model.CollectionEntry, error) {
	entry, err := s.repo.AdjustQuantity(ctx, cardID, delta)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		if errors.Is(err, model.ErrQuantityOutOfRange) {
			log.Printf("[CollectionService] Rejected change %+d for %s: %v", delta, cardID, err)
			return nil, ErrQuantityOutOfRange
		}
		return nil, err
	}

	if entry == nil {
		log.Printf("[CollectionService] %s not owned after change %+d", cardID, delta)
	} else {
		log.Printf("[CollectionService] %s quantity now %d", cardID, entry.Quantity)
	}
	return entry, nil
}

// ListCollection returns every owned card ordered by name.
func (s *CollectionService) ListCollection(ctx context.Context) ([]model.CollectionEntry, error) {
	return s.repo.ListCollection(ctx)
}

// CollectionSummaryForExpansion returns each card of the expansion with its
// owned quantity and the completion stats. An unknown expansion yields an
// empty summary.
func (s *CollectionService) CollectionSummaryForExpansion(ctx context.Context, expansionID string) (model.CollectionSummary, error) {
	rows, err := s.repo.CollectionForExpansion(ctx, expansionID)
	if err != nil {
		return model.CollectionSummary{}, err
	}
	return model.BuildCollectionSummary(rows), nil
}

// TotalCards returns the sum of owned quantities.
func (s *CollectionService) TotalCards(ctx context.Context) (int64, error) {
	return s.repo.TotalCollectedCards(ctx)
}

// TotalExpansions returns the number of distinct expansions in the collection.
func (s *CollectionService) TotalExpansions(ctx context.Context) (int64, error) {
	return s.repo.TotalCollectedExpansions(ctx)
}

// CardsByExpansion returns owned quantities per expansion.
func (s *CollectionService) CardsByExpansion(ctx context.Context) ([]model.ExpansionCount, error) {
	return s.repo.CollectedCardsByExpansion(ctx)
}
