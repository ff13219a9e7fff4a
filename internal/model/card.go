package model

// Card is one catalog card. Subtype and Types hold comma-joined lists.
type Card struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ExpansionID string  `json:"expansion_id"`
	Number      string  `json:"number"`
	Rarity      *string `json:"rarity"`
	Supertype   string  `json:"supertype"`
	Subtype     string  `json:"subtype"`
	HP          *string `json:"hp"`
	Types       string  `json:"types"`
	EvolvesFrom *string `json:"evolves_from"`
	ImageURL    string  `json:"image_url"`
}

// SearchFilter narrows a card search. Empty Rarity/Type mean no filter.
type SearchFilter struct {
	Query  string
	Rarity string
	Type   string
}
