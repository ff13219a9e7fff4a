package provider

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"tcg-collection-api/internal/model"
)

// ErrMalformedEntry is returned when a provider entry lacks a required field.
var ErrMalformedEntry = errors.New("malformed provider entry")

// page is the envelope of every list endpoint.
type page[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Count      int `json:"count"`
	TotalCount int `json:"totalCount"`
}

// Legalities lists a set's or card's format legality ("Legal", "Banned").
type Legalities struct {
	Unlimited *string `json:"unlimited"`
	Standard  *string `json:"standard"`
	Expanded  *string `json:"expanded"`
}

// Set is an expansion as returned by /sets.
type Set struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Series       string     `json:"series"`
	PrintedTotal *int       `json:"printedTotal"`
	Total        *int       `json:"total"`
	Legalities   Legalities `json:"legalities"`
	PtcgoCode    *string    `json:"ptcgoCode"`
	ReleaseDate  string     `json:"releaseDate"`
	UpdatedAt    string     `json:"updatedAt"`
	Images       struct {
		Symbol string `json:"symbol"`
		Logo   string `json:"logo"`
	} `json:"images"`
}

// Card is a card as returned by /cards.
type Card struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Supertype   string   `json:"supertype"`
	Subtypes    []string `json:"subtypes"`
	HP          *string  `json:"hp"`
	Types       []string `json:"types"`
	EvolvesFrom *string  `json:"evolvesFrom"`
	Number      string   `json:"number"`
	Rarity      *string  `json:"rarity"`
	Set         struct {
		ID string `json:"id"`
	} `json:"set"`
	Images struct {
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"images"`
}

var (
	dateLayouts      = []string{"2006/01/02", "2006-01-02"}
	timestampLayouts = []string{"2006/01/02 15:04:05", time.RFC3339, "2006-01-02 15:04:05"}
)

func parseAny(value string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func missing(fields map[string]string) []string {
	var names []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// ToExpansion validates the set and converts it to the stored form.
// The release date is normalized to YYYY-MM-DD.
func (s Set) ToExpansion() (model.Expansion, error) {
	if names := missing(map[string]string{
		"id": s.ID, "name": s.Name, "series": s.Series, "releaseDate": s.ReleaseDate,
	}); len(names) > 0 {
		return model.Expansion{}, fmt.Errorf("%w: set %q missing %s", ErrMalformedEntry, s.ID, strings.Join(names, ", "))
	}

	released, ok := parseAny(s.ReleaseDate, dateLayouts)
	if !ok {
		return model.Expansion{}, fmt.Errorf("%w: set %q has invalid releaseDate %q", ErrMalformedEntry, s.ID, s.ReleaseDate)
	}

	exp := model.Expansion{
		ID:             s.ID,
		Name:           s.Name,
		Series:         s.Series,
		PrintedTotal:   s.PrintedTotal,
		Total:          s.Total,
		LegalUnlimited: s.Legalities.Unlimited,
		LegalStandard:  s.Legalities.Standard,
		LegalExpanded:  s.Legalities.Expanded,
		PtcgoCode:      s.PtcgoCode,
		ReleaseDate:    released.Format("2006-01-02"),
		SymbolURL:      s.Images.Symbol,
		LogoURL:        s.Images.Logo,
	}

	if updated, ok := parseAny(s.UpdatedAt, timestampLayouts); ok {
		formatted := updated.UTC().Format(time.RFC3339)
		exp.UpdatedAt = &formatted
	}

	return exp, nil
}

// ToCard validates the card and converts it to the stored form.
func (c Card) ToCard() (model.Card, error) {
	if names := missing(map[string]string{
		"id": c.ID, "name": c.Name, "set.id": c.Set.ID, "number": c.Number, "supertype": c.Supertype,
	}); len(names) > 0 {
		return model.Card{}, fmt.Errorf("%w: card %q missing %s", ErrMalformedEntry, c.ID, strings.Join(names, ", "))
	}

	return model.Card{
		ID:          c.ID,
		Name:        c.Name,
		ExpansionID: c.Set.ID,
		Number:      c.Number,
		Rarity:      c.Rarity,
		Supertype:   c.Supertype,
		Subtype:     strings.Join(c.Subtypes, ","),
		HP:          c.HP,
		Types:       strings.Join(c.Types, ","),
		EvolvesFrom: c.EvolvesFrom,
		ImageURL:    c.Images.Small,
	}, nil
}
