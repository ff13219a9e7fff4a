package repository

import (
	"context"
	"errors"

	"tcg-collection-api/internal/model"
)

// ErrNotFound is returned when a referenced catalog card does not exist.
var ErrNotFound = errors.New("not found")

// CatalogRepository defines expansion and card data access methods.
type CatalogRepository interface {
	// InsertExpansions inserts expansions whose id is not stored yet and
	// returns how many rows were added. Existing rows are left untouched.
	InsertExpansions(ctx context.Context, expansions []model.Expansion) (int, error)

	// InsertCards inserts cards whose id is not stored yet and returns how
	// many rows were added.
	InsertCards(ctx context.Context, cards []model.Card) (int, error)

	// ListExpansions returns every stored expansion.
	ListExpansions(ctx context.Context) ([]model.Expansion, error)

	// ExpansionExists reports whether an expansion id is stored.
	ExpansionExists(ctx context.Context, id string) (bool, error)

	// ExpansionIDsWithoutCards returns the ids of expansions with no card rows.
	ExpansionIDsWithoutCards(ctx context.Context) ([]string, error)

	// ListCardsByExpansion returns the cards of one expansion, unordered.
	ListCardsByExpansion(ctx context.Context, expansionID string) ([]model.Card, error)

	// SearchCards returns cards matching the filter, ordered by name.
	SearchCards(ctx context.Context, filter model.SearchFilter) ([]model.Card, error)

	// GetCard returns a card by id, or nil when it does not exist.
	GetCard(ctx context.Context, id string) (*model.Card, error)
}

// CollectionRepository defines ownership data access methods.
type CollectionRepository interface {
	// ListCollection returns every collection entry ordered by name.
	ListCollection(ctx context.Context) ([]model.CollectionEntry, error)

	// CollectionForExpansion returns each card of the expansion joined with
	// its collection entry, if any.
	CollectionForExpansion(ctx context.Context, expansionID string) ([]model.CollectionCardRow, error)

	// AdjustQuantity applies delta to a card's owned quantity in one
	// transaction. It returns the entry as stored afterwards, or nil when no
	// entry exists. ErrNotFound is returned for cards missing from the catalog.
	AdjustQuantity(ctx context.Context, cardID string, delta int) (*model.CollectionEntry, error)

	// TotalCollectedCards returns the sum of owned quantities.
	TotalCollectedCards(ctx context.Context) (int64, error)

	// TotalCollectedExpansions returns the number of distinct expansions owned.
	TotalCollectedExpansions(ctx context.Context) (int64, error)

	// CollectedCardsByExpansion returns owned quantities per expansion.
	CollectedCardsByExpansion(ctx context.Context) ([]model.ExpansionCount, error)
}

// Repository is the full store used by the services.
type Repository interface {
	CatalogRepository
	CollectionRepository

	// GetStats returns statistics about the database.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Close closes the repository connection.
	Close() error
}
