package models

import (
	"strings"
	"time"
)

// PriceCondition represents the condition for pricing purposes
type PriceCondition string

const (
	PriceConditionNM  PriceCondition = "NM"  // Near Mint
	PriceConditionLP  PriceCondition = "LP"  // Lightly Played
	PriceConditionMP  PriceCondition = "MP"  // Moderately Played
	PriceConditionHP  PriceCondition = "HP"  // Heavily Played
	PriceConditionDMG PriceCondition = "DMG" // Damaged
)

// PrintingType represents card printing variants
type PrintingType string

const (
	PrintingNormal      PrintingType = "Normal"
	PrintingFoil        PrintingType = "Foil"
	Printing1stEdition  PrintingType = "1st Edition"
	PrintingUnlimited   PrintingType = "Unlimited"
	PrintingReverseHolo PrintingType = "Reverse Holofoil"
)

// CardLanguage represents the language/region of a card
type CardLanguage string

const (
	LanguageEnglish  CardLanguage = "English"
	LanguageJapanese CardLanguage = "Japanese"
	LanguageGerman   CardLanguage = "German"
	LanguageFrench   CardLanguage = "French"
	LanguageItalian  CardLanguage = "Italian"
)

// AllPriceConditions returns all valid price conditions
func AllPriceConditions() []PriceCondition {
	return []PriceCondition{
		PriceConditionNM,
		PriceConditionLP,
		PriceConditionMP,
		PriceConditionHP,
		PriceConditionDMG,
	}
}

// AllPrintingTypes returns all valid printing types
func AllPrintingTypes() []PrintingType {
	return []PrintingType{
		PrintingNormal,
		PrintingFoil,
		Printing1stEdition,
		PrintingUnlimited,
		PrintingReverseHolo,
	}
}

// NormalizeLanguage maps various language string formats to our CardLanguage type.
// Returns LanguageEnglish as default for unknown/empty values.
func NormalizeLanguage(lang string) CardLanguage {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "japanese", "jp", "ja", "jpn":
		return LanguageJapanese
	case "german", "de", "deu", "ger":
		return LanguageGerman
	case "french", "fr", "fra", "fre":
		return LanguageFrench
	case "italian", "it", "ita":
		return LanguageItalian
	default:
		return LanguageEnglish
	}
}

// CardPrice is one persisted price row for a card, condition, printing and language
type CardPrice struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	CardID         string         `json:"card_id" gorm:"not null;uniqueIndex:idx_card_cond_print_lang"`
	Condition      PriceCondition `json:"condition" gorm:"not null;uniqueIndex:idx_card_cond_print_lang"`
	Printing       PrintingType   `json:"printing" gorm:"not null;uniqueIndex:idx_card_cond_print_lang;default:'Normal'"`
	Language       CardLanguage   `json:"language" gorm:"not null;uniqueIndex:idx_card_cond_print_lang;default:'English'"`
	PriceUSD       float64        `json:"price_usd"`
	Source         string         `json:"source"`
	PriceUpdatedAt *time.Time     `json:"price_updated_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// PricePoint is a single price for one condition and printing
type PricePoint struct {
	Condition PriceCondition `json:"condition"`
	Printing  PrintingType   `json:"printing"`
	PriceUSD  float64        `json:"price_usd"`
}

// PriceEntry holds every known price point for one card
type PriceEntry struct {
	CardID    string       `json:"card_id"`
	Points    []PricePoint `json:"points"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

// printingFallbacks lists which printings stand in for a missing one.
// WotC-era cards are priced as "Unlimited" rather than "Normal", and reverse
// holos / 1st editions fall back to the regular print, never to holo.
var printingFallbacks = map[PrintingType][]PrintingType{
	PrintingNormal:      {PrintingUnlimited},
	PrintingUnlimited:   {PrintingNormal},
	Printing1stEdition:  {PrintingNormal, PrintingUnlimited},
	PrintingReverseHolo: {PrintingNormal, PrintingUnlimited},
	PrintingFoil:        {PrintingReverseHolo},
}

func (e *PriceEntry) find(condition PriceCondition, printing PrintingType) (float64, bool) {
	for _, p := range e.Points {
		if p.Condition == condition && p.Printing == printing && p.PriceUSD > 0 {
			return p.PriceUSD, true
		}
	}
	return 0, false
}

// Price returns the price for a condition and printing.
// Fallback order: exact -> NM same printing -> fallback printings (exact, then NM).
// Returns 0 when nothing applies.
func (e *PriceEntry) Price(condition PriceCondition, printing PrintingType) float64 {
	if e == nil {
		return 0
	}
	printings := append([]PrintingType{printing}, printingFallbacks[printing]...)
	for _, pr := range printings {
		if v, ok := e.find(condition, pr); ok {
			return v
		}
		if v, ok := e.find(PriceConditionNM, pr); ok {
			return v
		}
	}
	return 0
}

// Market returns the headline value of the card: the NM normal price if
// known, else the cheapest NM price of any printing, else the first point.
func (e *PriceEntry) Market() (float64, bool) {
	if e == nil || len(e.Points) == 0 {
		return 0, false
	}
	if v := e.Price(PriceConditionNM, PrintingNormal); v > 0 {
		return v, true
	}
	best := 0.0
	for _, p := range e.Points {
		if p.Condition == PriceConditionNM && p.PriceUSD > 0 && (best == 0 || p.PriceUSD < best) {
			best = p.PriceUSD
		}
	}
	if best > 0 {
		return best, true
	}
	for _, p := range e.Points {
		if p.PriceUSD > 0 {
			return p.PriceUSD, true
		}
	}
	return 0, false
}

// PriceTable maps card ids to their prices. A table is replaced wholesale on
// refresh and never mutated once published; Version identifies the refresh.
type PriceTable struct {
	Version  uint64                `json:"version"`
	Entries  map[string]PriceEntry `json:"entries"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Lookup returns the price entry for a card, if any
func (t *PriceTable) Lookup(cardID string) (*PriceEntry, bool) {
	if t == nil {
		return nil, false
	}
	e, ok := t.Entries[cardID]
	if !ok {
		return nil, false
	}
	return &e, true
}

// Len returns the number of priced cards
func (t *PriceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}
