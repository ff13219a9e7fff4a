package model

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// CollectionEntry is the ownership record for one card. It carries a
// denormalized copy of the card's display fields.
type CollectionEntry struct {
	ID               int64   `json:"-"`
	CardID           string  `json:"card_id"`
	Name             string  `json:"name"`
	ExpansionID      string  `json:"expansion_id"`
	Number           string  `json:"number"`
	Rarity           *string `json:"rarity"`
	Type             string  `json:"type"`
	HP               *string `json:"hp,omitempty"`
	Color            string  `json:"color"`
	EvolvesFrom      *string `json:"evolves_from,omitempty"`
	ImageURL         string  `json:"image_url"`
	Quantity         int     `json:"quantity"`
	CollectionNumber int     `json:"collection_number"`
}

// NewCollectionEntry builds the entry created on a card's first positive change.
func NewCollectionEntry(card Card, quantity int) CollectionEntry {
	return CollectionEntry{
		CardID:           card.ID,
		Name:             card.Name,
		ExpansionID:      card.ExpansionID,
		Number:           card.Number,
		Rarity:           card.Rarity,
		Type:             card.Supertype,
		HP:               card.HP,
		Color:            card.Types,
		EvolvesFrom:      card.EvolvesFrom,
		ImageURL:         card.ImageURL,
		Quantity:         quantity,
		CollectionNumber: NumberValue(card.Number),
	}
}

// MaxQuantity is the largest quantity every supported store can hold in its
// 32-bit quantity column.
const MaxQuantity = math.MaxInt32

// ErrQuantityOutOfRange is returned when a change would push a quantity
// above MaxQuantity.
var ErrQuantityOutOfRange = errors.New("quantity out of range")

// CheckDelta reports whether adding delta to current stays within MaxQuantity.
// current must be between 0 and MaxQuantity.
func CheckDelta(current, delta int) error {
	if delta > MaxQuantity-current {
		return fmt.Errorf("%w: %d + %d exceeds %d", ErrQuantityOutOfRange, current, delta, MaxQuantity)
	}
	return nil
}

// ApplyDelta returns the quantity after adding delta, clamped at zero and
// saturated at MaxQuantity. Callers reject out-of-range changes with
// CheckDelta first.
func ApplyDelta(current, delta int) int {
	switch {
	case delta > MaxQuantity-current:
		return MaxQuantity
	case current+delta > 0:
		return current + delta
	default:
		return 0
	}
}

// CollectionCardRow is a catalog card joined with its (optional) ownership record.
type CollectionCardRow struct {
	CardID           string
	Name             string
	Number           string
	Type             string
	Color            string
	Rarity           *string
	ImageURL         string
	Quantity         int
	CollectionNumber *int
}

// SummaryItem is one card line of a per-expansion collection view.
type SummaryItem struct {
	CardID           string  `json:"card_id"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Color            string  `json:"color"`
	Rarity           *string `json:"rarity"`
	ImageURL         string  `json:"image_url"`
	Quantity         int     `json:"quantity"`
	CollectionNumber int     `json:"collection_number"`
}

// SummaryStats reports completion as "owned/total" strings.
type SummaryStats struct {
	Total    string            `json:"total"`
	Rarities map[string]string `json:"rarities"`
}

// CollectionSummary is the per-expansion collection view.
type CollectionSummary struct {
	Collection []SummaryItem `json:"collection"`
	Stats      SummaryStats  `json:"stats"`
}

// UnknownRarity is the stats bucket for cards without a rarity.
const UnknownRarity = "Unknown"

// ExpansionCount is one slice of the cards-by-expansion widget.
type ExpansionCount struct {
	ExpansionName string `json:"expansionName"`
	CardCount     int64  `json:"cardCount"`
}

// Ordinal is the row's display position: its collection number when owned,
// otherwise the value of its in-set number.
func (r CollectionCardRow) Ordinal() int {
	if r.CollectionNumber != nil {
		return *r.CollectionNumber
	}
	return NumberValue(r.Number)
}

// BuildCollectionSummary orders rows by display ordinal and computes the
// owned/total counts overall and per rarity.
func BuildCollectionSummary(rows []CollectionCardRow) CollectionSummary {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b CollectionCardRow) int {
		if c := cmp.Compare(a.Ordinal(), b.Ordinal()); c != 0 {
			return c
		}
		if c := CompareNumbers(a.Number, b.Number); c != 0 {
			return c
		}
		return strings.Compare(a.CardID, b.CardID)
	})

	items := make([]SummaryItem, 0, len(sorted))
	rarityTotal := make(map[string]int)
	rarityOwned := make(map[string]int)
	owned := 0

	for _, row := range sorted {
		items = append(items, SummaryItem{
			CardID:           row.CardID,
			Name:             row.Name,
			Type:             row.Type,
			Color:            row.Color,
			Rarity:           row.Rarity,
			ImageURL:         row.ImageURL,
			Quantity:         row.Quantity,
			CollectionNumber: row.Ordinal(),
		})

		rarity := UnknownRarity
		if row.Rarity != nil && *row.Rarity != "" {
			rarity = *row.Rarity
		}
		rarityTotal[rarity]++
		if row.Quantity > 0 {
			rarityOwned[rarity]++
			owned++
		}
	}

	rarities := make(map[string]string, len(rarityTotal))
	for rarity, total := range rarityTotal {
		rarities[rarity] = fmt.Sprintf("%d/%d", rarityOwned[rarity], total)
	}

	return CollectionSummary{
		Collection: items,
		Stats: SummaryStats{
			Total:    fmt.Sprintf("%d/%d", owned, len(sorted)),
			Rarities: rarities,
		},
	}
}
