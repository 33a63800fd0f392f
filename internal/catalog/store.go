// Package catalog is the in-memory card query engine: normalized records and
// lookup tables, the fuzzy search index built over them, the criteria state
// machine and the filter/sort/denormalize pipeline.
//
// Everything here is pure and does no I/O. Loading data and serving results
// belong to internal/services and internal/api.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

// Payload is a ready-made normalized catalog as delivered by a loader
type Payload struct {
	Cards   []models.NormalizedCard `json:"cards"`
	Lookups Lookups                 `json:"lookups"`
}

// Catalog is one loaded, validated snapshot. It is immutable once Load
// returns; a refresh produces a new Catalog with a new ID.
type Catalog struct {
	ID       uuid.UUID
	Cards    []models.NormalizedCard
	Lookups  Lookups
	LoadedAt time.Time

	byID map[string]int
}

// Load validates a payload and turns it into a catalog snapshot. Every ref
// must resolve; otherwise a *DataIntegrityError lists the offending records.
// Card order is preserved and becomes the catalog order used for tie-breaks.
func Load(p Payload) (*Catalog, error) {
	cards := make([]models.NormalizedCard, len(p.Cards))
	copy(cards, p.Cards)

	byID := make(map[string]int, len(cards))
	var bad []string
	flagged := make(map[string]bool)
	flag := func(i int) {
		id := cards[i].ID
		if id == "" {
			id = fmt.Sprintf("<record %d>", i)
		}
		if !flagged[id] {
			flagged[id] = true
			bad = append(bad, id)
		}
	}

	for i := range cards {
		card := &cards[i]
		if card.ID == "" {
			flag(i)
			continue
		}
		if prev, dup := byID[card.ID]; dup {
			flag(prev)
			flag(i)
			continue
		}
		byID[card.ID] = i
		if !refsResolve(card, &p.Lookups) {
			flag(i)
		}
	}

	if len(bad) > 0 {
		return nil, &DataIntegrityError{RecordIDs: bad}
	}

	releases := releaseOrdinals(p.Lookups.Sets)
	for i := range cards {
		cards[i].SortAux = computeSortAux(&cards[i], releases)
	}

	return &Catalog{
		ID:       uuid.New(),
		Cards:    cards,
		Lookups:  p.Lookups,
		LoadedAt: time.Now(),
		byID:     byID,
	}, nil
}

func refsResolve(card *models.NormalizedCard, l *Lookups) bool {
	if !l.Sets.Has(card.SetRef) {
		return false
	}
	optional := []struct {
		ref models.Ref
		ok  func(models.Ref) bool
	}{
		{card.RarityRef, l.Rarities.Has},
		{card.SupertypeRef, l.Supertypes.Has},
		{card.ArtistRef, l.Artists.Has},
	}
	for _, o := range optional {
		if o.ref != models.NoRef && !o.ok(o.ref) {
			return false
		}
	}
	lists := []struct {
		refs []models.Ref
		ok   func(models.Ref) bool
	}{
		{card.TypeRefs, l.Types.Has},
		{card.SubtypeRefs, l.Subtypes.Has},
		{card.AbilityRefs, l.Abilities.Has},
		{card.AttackRefs, l.Attacks.Has},
		{card.RuleRefs, l.Rules.Has},
	}
	for _, list := range lists {
		for _, ref := range list.refs {
			if !list.ok(ref) {
				return false
			}
		}
	}
	return true
}

// releaseOrdinals ranks sets by release date, ties broken by set id.
// Sets without a release date get 0.
func releaseOrdinals(sets LookupTable[models.SetEntry]) []int {
	type dated struct {
		ref  int
		date string
		id   string
	}
	all := make([]dated, 0, sets.Len())
	for i, s := range sets.values {
		if s.ReleaseDate != "" {
			all = append(all, dated{ref: i, date: s.ReleaseDate, id: s.ID})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].date != all[j].date {
			return all[i].date < all[j].date
		}
		return all[i].id < all[j].id
	})

	ordinals := make([]int, sets.Len())
	for rank, d := range all {
		ordinals[d.ref] = rank + 1
	}
	return ordinals
}

func computeSortAux(card *models.NormalizedCard, releases []int) models.SortAux {
	aux := models.SortAux{Number: collectorNumber(card.Number)}

	for _, n := range card.NationalPokedexNumbers {
		if n > 0 && (aux.Pokedex == 0 || n < aux.Pokedex) {
			aux.Pokedex = n
		}
	}
	if int(card.SetRef) < len(releases) {
		aux.Release = releases[card.SetRef]
	}
	if hp, err := strconv.Atoi(card.HP); err == nil && hp > 0 {
		aux.HP = hp
	}
	return aux
}

// collectorNumber extracts the first run of digits from a collector number
// ("025" -> 25, "TG12" -> 12, "SWSH001" -> 1). Returns -1 when there is none.
func collectorNumber(number string) int {
	start := -1
	for i := 0; i < len(number); i++ {
		isDigit := number[i] >= '0' && number[i] <= '9'
		if isDigit && start < 0 {
			start = i
		}
		if !isDigit && start >= 0 {
			number = number[:i]
			break
		}
	}
	if start < 0 {
		return -1
	}
	n, err := strconv.Atoi(number[start:])
	if err != nil {
		return -1
	}
	return n
}

// Len returns the number of cards in the snapshot
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Cards)
}

// Position returns the catalog position of a card id
func (c *Catalog) Position(id string) (int, bool) {
	if c == nil {
		return 0, false
	}
	pos, ok := c.byID[id]
	return pos, ok
}

// Set resolves a set ref
func (c *Catalog) Set(ref models.Ref) (models.SetEntry, bool) {
	return c.Lookups.Sets.Get(ref)
}
