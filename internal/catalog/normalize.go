package catalog

import (
	"strings"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

// RawAttack is an attack as shipped by pokemon-tcg-data
type RawAttack struct {
	Name   string   `json:"name"`
	Cost   []string `json:"cost"`
	Damage string   `json:"damage"`
	Text   string   `json:"text"`
}

// RawAbility is an ability as shipped by pokemon-tcg-data
type RawAbility struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type RawCardImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// RawCard is one denormalized card from pokemon-tcg-data
type RawCard struct {
	Subtypes               []string      `json:"subtypes"`
	Types                  []string      `json:"types"`
	Rules                  []string      `json:"rules"`
	Images                 RawCardImages `json:"images"`
	Attacks                []RawAttack   `json:"attacks"`
	Abilities              []RawAbility  `json:"abilities"`
	NationalPokedexNumbers []int         `json:"nationalPokedexNumbers"`
	ID                     string        `json:"id"`
	Name                   string        `json:"name"`
	Supertype              string        `json:"supertype"`
	HP                     string        `json:"hp"`
	Number                 string        `json:"number"`
	Artist                 string        `json:"artist"`
	Rarity                 string        `json:"rarity"`
	FlavorText             string        `json:"flavorText"`
	EvolvesFrom            string        `json:"evolvesFrom"`
	SetID                  string        `json:"-"` // populated from the card file name
}

// RawSet is a set entry from pokemon-tcg-data sets/en.json
type RawSet struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Series       string `json:"series"`
	PrintedTotal int    `json:"printedTotal"`
	Total        int    `json:"total"`
	ReleaseDate  string `json:"releaseDate"`
}

// RawCatalog is the denormalized source data, cards in catalog order
type RawCatalog struct {
	Sets  []RawSet
	Cards []RawCard
}

// Normalize interns every repeated attribute of the raw catalog into lookup
// tables. Cards whose set is not in the set list cannot be normalized and
// are reported together in a *DataIntegrityError.
func Normalize(raw RawCatalog) (Payload, error) {
	setRefs := make(map[string]models.Ref, len(raw.Sets))
	sets := make([]models.SetEntry, 0, len(raw.Sets))
	for _, s := range raw.Sets {
		key := strings.ToLower(s.ID)
		if _, dup := setRefs[key]; dup {
			continue
		}
		setRefs[key] = models.Ref(len(sets))
		sets = append(sets, models.SetEntry{
			ID:           s.ID,
			Name:         s.Name,
			Series:       s.Series,
			PrintedTotal: s.PrintedTotal,
			Total:        s.Total,
			ReleaseDate:  s.ReleaseDate,
		})
	}

	var (
		rarities   = newInterner[string]()
		supertypes = newInterner[string]()
		artists    = newInterner[string]()
		types      = newInterner[string]()
		subtypes   = newInterner[string]()
		abilities  = newInterner[models.Ability]()
		attacks    = newInterner[models.Attack]()
		rules      = newInterner[string]()
	)

	cards := make([]models.NormalizedCard, 0, len(raw.Cards))
	var orphans []string

	for i := range raw.Cards {
		rc := &raw.Cards[i]
		setRef, ok := setRefs[strings.ToLower(rc.SetID)]
		if !ok {
			orphans = append(orphans, rc.ID)
			continue
		}

		card := models.NormalizedCard{
			ID:                     rc.ID,
			Name:                   rc.Name,
			Number:                 rc.Number,
			HP:                     rc.HP,
			EvolvesFrom:            rc.EvolvesFrom,
			FlavorText:             rc.FlavorText,
			ImageURL:               rc.Images.Small,
			ImageURLLarge:          rc.Images.Large,
			NationalPokedexNumbers: rc.NationalPokedexNumbers,
			SetRef:                 setRef,
			RarityRef:              rarities.optional(rc.Rarity),
			SupertypeRef:           supertypes.optional(rc.Supertype),
			ArtistRef:              artists.optional(rc.Artist),
		}
		for _, t := range rc.Types {
			card.TypeRefs = append(card.TypeRefs, types.ref(t))
		}
		for _, st := range rc.Subtypes {
			card.SubtypeRefs = append(card.SubtypeRefs, subtypes.ref(st))
		}
		for _, a := range rc.Abilities {
			card.AbilityRefs = append(card.AbilityRefs, abilities.ref(models.Ability(a)))
		}
		for _, a := range rc.Attacks {
			card.AttackRefs = append(card.AttackRefs, attacks.ref(models.Attack{
				Name:   a.Name,
				Text:   a.Text,
				Damage: a.Damage,
				Cost:   strings.Join(a.Cost, ","),
			}))
		}
		for _, r := range rc.Rules {
			card.RuleRefs = append(card.RuleRefs, rules.ref(r))
		}
		cards = append(cards, card)
	}

	if len(orphans) > 0 {
		return Payload{}, &DataIntegrityError{RecordIDs: orphans}
	}

	return Payload{
		Cards: cards,
		Lookups: Lookups{
			Sets:       NewLookupTable(sets),
			Rarities:   rarities.table(),
			Supertypes: supertypes.table(),
			Artists:    artists.table(),
			Types:      types.table(),
			Subtypes:   subtypes.table(),
			Abilities:  abilities.table(),
			Attacks:    attacks.table(),
			Rules:      rules.table(),
		},
	}, nil
}
