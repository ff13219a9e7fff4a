package model

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// Expansion is a released card set as mirrored from the card-data provider.
type Expansion struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Series         string  `json:"series"`
	PrintedTotal   *int    `json:"printed_total"`
	Total          *int    `json:"total"`
	LegalUnlimited *string `json:"legal_unlimited"`
	LegalStandard  *string `json:"legal_standard"`
	LegalExpanded  *string `json:"legal_expanded"`
	PtcgoCode      *string `json:"ptcgo_code"`
	ReleaseDate    string  `json:"release_date"` // YYYY-MM-DD
	UpdatedAt      *string `json:"updated_at"`
	SymbolURL      string  `json:"symbol_url"`
	LogoURL        string  `json:"logo_url"`
}

// ExpansionGroup holds the expansions of one series.
type ExpansionGroup struct {
	Series     string
	Expansions []Expansion
}

// ExpansionGroups is an ordered series -> expansions mapping.
// It encodes as a JSON object whose keys keep the slice order.
type ExpansionGroups []ExpansionGroup

// MarshalJSON implements json.Marshaler.
func (g ExpansionGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, group := range g {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(group.Series)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		members := group.Expansions
		if members == nil {
			members = []Expansion{}
		}
		value, err := json.Marshal(members)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// GroupBySeries groups expansions by series. Members are ordered by release
// date descending; groups are ordered by their newest member, newest first.
// Ties fall back to id and series name so the output is deterministic.
func GroupBySeries(expansions []Expansion) ExpansionGroups {
	index := make(map[string]int)
	groups := ExpansionGroups{}

	for _, exp := range expansions {
		i, ok := index[exp.Series]
		if !ok {
			i = len(groups)
			index[exp.Series] = i
			groups = append(groups, ExpansionGroup{Series: exp.Series})
		}
		groups[i].Expansions = append(groups[i].Expansions, exp)
	}

	for i := range groups {
		slices.SortFunc(groups[i].Expansions, func(a, b Expansion) int {
			if c := strings.Compare(b.ReleaseDate, a.ReleaseDate); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		})
	}

	slices.SortFunc(groups, func(a, b ExpansionGroup) int {
		if c := strings.Compare(b.Expansions[0].ReleaseDate, a.Expansions[0].ReleaseDate); c != 0 {
			return c
		}
		return strings.Compare(a.Series, b.Series)
	})

	return groups
}
