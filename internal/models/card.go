package models

// Ref is a key into one of the catalog lookup tables. Refs are only valid
// within the catalog snapshot that produced them.
type Ref int32

// NoRef marks an optional scalar reference that is absent (for example a
// promo card without a rarity). It is never a dangling reference.
const NoRef Ref = -1

// SetEntry is the denormalized metadata for a card set
type SetEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Series       string `json:"series"`
	PrintedTotal int    `json:"printed_total"`
	Total        int    `json:"total"`
	ReleaseDate  string `json:"release_date"` // "2023/03/31" as shipped by pokemon-tcg-data
}

// Attack represents an attack on a Pokemon card
type Attack struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	Damage string `json:"damage"`
	Cost   string `json:"cost"` // energy symbols joined with ","
}

// Ability represents an ability on a Pokemon card
type Ability struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// SortAux holds sort keys precomputed at load time
type SortAux struct {
	Pokedex int `json:"pokedex"` // lowest national pokedex number, 0 when the card has none
	Release int `json:"release"` // 1-based release ordinal of the card's set, 0 when unknown
	Number  int `json:"number"`  // numeric part of the collector number, -1 when not numeric
	HP      int `json:"hp"`      // parsed HP, 0 when the card has none
}

// NormalizedCard is one catalog row. Repeated attributes are stored as refs
// into the catalog lookup tables.
type NormalizedCard struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Number                 string `json:"number"`
	HP                     string `json:"hp,omitempty"`
	EvolvesFrom            string `json:"evolves_from,omitempty"`
	FlavorText             string `json:"flavor_text,omitempty"`
	ImageURL               string `json:"image_url,omitempty"`
	ImageURLLarge          string `json:"image_url_large,omitempty"`
	NationalPokedexNumbers []int  `json:"national_pokedex_numbers,omitempty"`

	SetRef       Ref   `json:"set"`
	RarityRef    Ref   `json:"rarity"`
	SupertypeRef Ref   `json:"supertype"`
	ArtistRef    Ref   `json:"artist"`
	TypeRefs     []Ref `json:"types,omitempty"`
	SubtypeRefs  []Ref `json:"subtypes,omitempty"`
	AbilityRefs  []Ref `json:"abilities,omitempty"`
	AttackRefs   []Ref `json:"attacks,omitempty"`
	RuleRefs     []Ref `json:"rules,omitempty"`

	SortAux SortAux `json:"-"`
}

// ViewCard is a NormalizedCard with every ref resolved and its price attached.
// It is derived on demand and never stored.
type ViewCard struct {
	ID                     string      `json:"id"`
	Name                   string      `json:"name"`
	Number                 string      `json:"number"`
	HP                     string      `json:"hp,omitempty"`
	EvolvesFrom            string      `json:"evolves_from,omitempty"`
	FlavorText             string      `json:"flavor_text,omitempty"`
	ImageURL               string      `json:"image_url,omitempty"`
	ImageURLLarge          string      `json:"image_url_large,omitempty"`
	NationalPokedexNumbers []int       `json:"national_pokedex_numbers,omitempty"`
	Set                    SetEntry    `json:"set"`
	Rarity                 string      `json:"rarity,omitempty"`
	Supertype              string      `json:"supertype,omitempty"`
	Artist                 string      `json:"artist,omitempty"`
	Types                  []string    `json:"types,omitempty"`
	Subtypes               []string    `json:"subtypes,omitempty"`
	Abilities              []Ability   `json:"abilities,omitempty"`
	Attacks                []Attack    `json:"attacks,omitempty"`
	Rules                  []string    `json:"rules,omitempty"`
	Price                  *PriceEntry `json:"price,omitempty"`
	Position               int         `json:"position"`
}

// SuggestionSet is the slice of set metadata carried by a Suggestion
type SuggestionSet struct {
	Name         string `json:"name"`
	PrintedTotal int    `json:"printed_total"`
}

// Suggestion is a lightweight autocomplete entry
type Suggestion struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Number string        `json:"number"`
	Set    SuggestionSet `json:"set"`
}

type CardSearchResult struct {
	Cards      []ViewCard `json:"cards"`
	TotalCount int        `json:"total_count"`
	HasMore    bool       `json:"has_more"`
}
