package catalog

import (
	"testing"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

// fixtureRaw is a small catalog spanning three sets, one trainer without
// rarity or pokedex number, and a fictional "Pikablu" for fuzzy tests.
func fixtureRaw() RawCatalog {
	return RawCatalog{
		Sets: []RawSet{
			{ID: "base1", Name: "Base", Series: "Base", PrintedTotal: 102, Total: 102, ReleaseDate: "1999/01/09"},
			{ID: "swsh4", Name: "Vivid Voltage", Series: "Sword & Shield", PrintedTotal: 185, Total: 203, ReleaseDate: "2020/11/13"},
			{ID: "sv1", Name: "Scarlet & Violet", Series: "Scarlet & Violet", PrintedTotal: 198, Total: 258, ReleaseDate: "2023/03/31"},
		},
		Cards: []RawCard{
			{
				ID: "base1-58", Name: "Pikachu", Number: "58", SetID: "base1", Supertype: "Pokémon",
				Subtypes: []string{"Basic"}, Types: []string{"Lightning"}, Rarity: "Common", HP: "40",
				Artist: "Mitsuhiro Arita", NationalPokedexNumbers: []int{25},
				Attacks: []RawAttack{{Name: "Gnaw", Damage: "10", Cost: []string{"Colorless"}}, {Name: "Thunder Jolt", Damage: "30"}},
			},
			{
				ID: "base1-14", Name: "Raichu", Number: "14", SetID: "base1", Supertype: "Pokémon",
				Subtypes: []string{"Stage 1"}, Types: []string{"Lightning"}, Rarity: "Rare Holo", HP: "80",
				Artist: "Ken Sugimori", NationalPokedexNumbers: []int{26}, EvolvesFrom: "Pikachu",
				Attacks: []RawAttack{{Name: "Agility", Damage: "20"}, {Name: "Thunder", Damage: "60"}},
			},
			{
				ID: "base1-4", Name: "Charizard", Number: "4", SetID: "base1", Supertype: "Pokémon",
				Subtypes: []string{"Stage 2"}, Types: []string{"Fire"}, Rarity: "Rare Holo", HP: "120",
				Artist: "Mitsuhiro Arita", NationalPokedexNumbers: []int{6},
				Abilities: []RawAbility{{Name: "Energy Burn", Type: "Pokémon Power"}},
				Attacks:   []RawAttack{{Name: "Fire Spin", Damage: "100"}},
			},
			{
				ID: "swsh4-44", Name: "Pikachu VMAX", Number: "44", SetID: "swsh4", Supertype: "Pokémon",
				Subtypes: []string{"VMAX"}, Types: []string{"Lightning"}, Rarity: "Rare Holo VMAX", HP: "310",
				Artist: "aky CG Works", NationalPokedexNumbers: []int{25},
				Rules:   []string{"VMAX rule: When your Pokémon VMAX is Knocked Out, your opponent takes 3 Prize cards."},
				Attacks: []RawAttack{{Name: "G-Max Volt Tackle", Damage: "120+"}},
			},
			{
				ID: "swsh4-186", Name: "Pikablu", Number: "186", SetID: "swsh4", Supertype: "Pokémon",
				Subtypes: []string{"Basic"}, Types: []string{"Water"}, Rarity: "Common", HP: "60",
				Artist: "Ken Sugimori", NationalPokedexNumbers: []int{183},
			},
			{
				ID: "sv1-189", Name: "Professor's Research", Number: "189", SetID: "sv1", Supertype: "Trainer",
				Subtypes: []string{"Supporter"}, Artist: "Kanako Eo",
				Rules: []string{"Discard your hand and draw 7 cards."},
			},
			{
				ID: "sv1-1", Name: "Pineco", Number: "1", SetID: "sv1", Supertype: "Pokémon",
				Subtypes: []string{"Basic"}, Types: []string{"Grass"}, Rarity: "Common", HP: "70",
				Artist: "Kanako Eo", NationalPokedexNumbers: []int{204},
			},
		},
	}
}

// loadFixture normalizes and loads fixtureRaw
func loadFixture(t *testing.T) *Catalog {
	t.Helper()
	return loadRaw(t, fixtureRaw())
}

func loadRaw(t *testing.T, raw RawCatalog) *Catalog {
	t.Helper()
	payload, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	cat, err := Load(payload)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return cat
}

// namedCatalog builds a one-set catalog from card names, in order
func namedCatalog(t *testing.T, names ...string) *Catalog {
	t.Helper()
	raw := RawCatalog{Sets: []RawSet{{ID: "tst", Name: "Test Set", PrintedTotal: 10, ReleaseDate: "2020/01/01"}}}
	for i, name := range names {
		raw.Cards = append(raw.Cards, RawCard{
			ID:     "tst-" + string(rune('a'+i)),
			Name:   name,
			Number: string(rune('1' + i)),
			SetID:  "tst",
		})
	}
	return loadRaw(t, raw)
}

func viewIDs(cards []models.ViewCard) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
