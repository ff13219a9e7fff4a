package service

import "errors"

// Domain errors returned by the services. Handlers map them to HTTP status codes.
var (
	// ErrCardNotFound is returned when a card id is not in the catalog.
	ErrCardNotFound = errors.New("card not found")

	// ErrExpansionNotFound is returned when an expansion has no stored cards.
	ErrExpansionNotFound = errors.New("expansion not found or no cards available")

	// ErrQuantityOutOfRange is returned when a change would push a card's
	// quantity above model.MaxQuantity.
	ErrQuantityOutOfRange = errors.New("quantity change out of range")

	// ErrEmptyQuery is returned when a card search has no name query.
	ErrEmptyQuery = errors.New("search query must not be empty")

	// ErrUpstream wraps failures of the card-data provider.
	ErrUpstream = errors.New("card data provider request failed")
)
