package service

import (
	"context"
	"slices"
	"strings"

	"tcg-collection-api/internal/model"
	"tcg-collection-api/internal/repository"
)

// CatalogService serves read queries over expansions and cards.
type CatalogService struct {
	repo repository.CatalogRepository
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// ListExpansionsGrouped returns every expansion grouped by series.
func (s *CatalogService) ListExpansionsGrouped(ctx context.Context) (model.ExpansionGroups, error) {
	expansions, err := s.repo.ListExpansions(ctx)
	if err != nil {
		return nil, err
	}
	return model.GroupBySeries(expansions), nil
}

// ListCardsInExpansion returns an expansion's cards ordered by in-set number.
// ErrExpansionNotFound is returned when no cards are stored for the id.
func (s *CatalogService) ListCardsInExpansion(ctx context.Context, expansionID string) ([]model.Card, error) {
	cards, err := s.repo.ListCardsByExpansion(ctx, expansionID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrExpansionNotFound
	}

	slices.SortFunc(cards, func(a, b model.Card) int {
		if c := model.CompareNumbers(a.Number, b.Number); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return cards, nil
}

// SearchCards finds cards whose name contains the query, ignoring case.
// The query is matched as given, so " " finds names containing a space.
// Rarity and type narrow the result by whole-value, case-insensitive equality.
func (s *CatalogService) SearchCards(ctx context.Context, filter model.SearchFilter) ([]model.Card, error) {
	filter.Rarity = strings.TrimSpace(filter.Rarity)
	filter.Type = strings.TrimSpace(filter.Type)

	if filter.Query == "" {
		return nil, ErrEmptyQuery
	}
	return s.repo.SearchCards(ctx, filter)
}
