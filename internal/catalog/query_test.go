package catalog

import (
	"errors"
	"testing"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

// catalogOrder sorts ascending by release date, which for the fixture is
// exactly catalog order
func catalogOrder() models.Criteria {
	return models.Criteria{SortBy: models.SortReleaseDate, SortOrder: models.SortAsc}
}

func withFilters(cr models.Criteria, filters map[models.FilterField][]string) models.Criteria {
	cr.Filters = filters
	return cr
}

func fixturePrices() *models.PriceTable {
	return &models.PriceTable{
		Version: 1,
		Entries: map[string]models.PriceEntry{
			"base1-58": {CardID: "base1-58", Points: []models.PricePoint{
				{Condition: models.PriceConditionNM, Printing: models.PrintingNormal, PriceUSD: 1.50},
			}},
			"base1-4": {CardID: "base1-4", Points: []models.PricePoint{
				{Condition: models.PriceConditionNM, Printing: models.PrintingUnlimited, PriceUSD: 300},
				{Condition: models.PriceConditionLP, Printing: models.PrintingUnlimited, PriceUSD: 210},
			}},
			"swsh4-186": {CardID: "swsh4-186", Points: []models.PricePoint{
				{Condition: models.PriceConditionNM, Printing: models.PrintingNormal, PriceUSD: 0.25},
			}},
		},
	}
}

func TestEvaluateFilters(t *testing.T) {
	cat := loadFixture(t)
	idx := BuildIndex(cat)

	tests := []struct {
		name    string
		filters map[models.FilterField][]string
		want    []string
	}{
		{
			name:    "No filters returns everything",
			filters: nil,
			want:    []string{"base1-58", "base1-14", "base1-4", "swsh4-44", "swsh4-186", "sv1-189", "sv1-1"},
		},
		{
			name:    "Rarity",
			filters: map[models.FilterField][]string{models.FilterRarity: {"Rare Holo"}},
			want:    []string{"base1-14", "base1-4"},
		},
		{
			name:    "Filter values are case-insensitive",
			filters: map[models.FilterField][]string{models.FilterRarity: {"rare holo"}},
			want:    []string{"base1-14", "base1-4"},
		},
		{
			name:    "Any listed value matches",
			filters: map[models.FilterField][]string{models.FilterRarity: {"Rare Holo VMAX", "Common"}},
			want:    []string{"base1-58", "swsh4-44", "swsh4-186", "sv1-1"},
		},
		{
			name:    "Set by id",
			filters: map[models.FilterField][]string{models.FilterSet: {"base1"}},
			want:    []string{"base1-58", "base1-14", "base1-4"},
		},
		{
			name:    "Set by name",
			filters: map[models.FilterField][]string{models.FilterSet: {"Vivid Voltage"}},
			want:    []string{"swsh4-44", "swsh4-186"},
		},
		{
			name:    "Series",
			filters: map[models.FilterField][]string{models.FilterSeries: {"Scarlet & Violet"}},
			want:    []string{"sv1-189", "sv1-1"},
		},
		{
			name:    "Multi-valued field intersects",
			filters: map[models.FilterField][]string{models.FilterTypes: {"Lightning"}},
			want:    []string{"base1-58", "base1-14", "swsh4-44"},
		},
		{
			name:    "Attack name",
			filters: map[models.FilterField][]string{models.FilterAttacks: {"Thunder"}},
			want:    []string{"base1-14"},
		},
		{
			name:    "Ability name",
			filters: map[models.FilterField][]string{models.FilterAbilities: {"energy burn"}},
			want:    []string{"base1-4"},
		},
		{
			name:    "Supertype",
			filters: map[models.FilterField][]string{models.FilterSupertype: {"Trainer"}},
			want:    []string{"sv1-189"},
		},
		{
			name: "Fields combine with AND",
			filters: map[models.FilterField][]string{
				models.FilterSet:   {"base1"},
				models.FilterTypes: {"Lightning"},
			},
			want: []string{"base1-58", "base1-14"},
		},
		{
			name:    "Unknown value matches nothing",
			filters: map[models.FilterField][]string{models.FilterRarity: {"Secret Rare"}},
			want:    []string{},
		},
		{
			name:    "Empty value list is no constraint",
			filters: map[models.FilterField][]string{models.FilterArtist: {}},
			want:    []string{"base1-58", "base1-14", "base1-4", "swsh4-44", "swsh4-186", "sv1-189", "sv1-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(cat, idx, nil, withFilters(catalogOrder(), tt.filters))
			if err != nil {
				t.Fatalf("Evaluate() error: %v", err)
			}
			if !equalStrings(viewIDs(got), tt.want) {
				t.Errorf("Evaluate() = %v, want %v", viewIDs(got), tt.want)
			}
		})
	}
}

func TestEvaluateRarityKeepsCatalogOrder(t *testing.T) {
	cat := namedCatalog(t, "A", "B", "C")
	cat.Lookups.Rarities = NewLookupTable([]string{"Rare", "Common"})
	cat.Cards[0].RarityRef = 0
	cat.Cards[1].RarityRef = 1
	cat.Cards[2].RarityRef = 0

	cr := models.Criteria{SortBy: models.SortName, SortOrder: models.SortAsc,
		Filters: map[models.FilterField][]string{models.FilterRarity: {"Rare"}}}
	got, err := Evaluate(cat, BuildIndex(cat), nil, cr)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if !equalStrings(viewIDs(got), []string{"tst-a", "tst-c"}) {
		t.Errorf("Evaluate() = %v, want [tst-a tst-c]", viewIDs(got))
	}
	for _, v := range got {
		if v.Rarity != "Rare" {
			t.Errorf("%s rarity = %q, want Rare", v.ID, v.Rarity)
		}
	}
}

func TestEvaluateRejectsInvalidCriteria(t *testing.T) {
	cat := loadFixture(t)
	idx := BuildIndex(cat)

	_, err := Evaluate(cat, idx, nil, withFilters(catalogOrder(), map[models.FilterField][]string{"color": {"red"}}))
	var fieldErr *InvalidFilterFieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "color" {
		t.Errorf("unknown filter field: error = %v, want *InvalidFilterFieldError", err)
	}

	_, err = Evaluate(cat, idx, nil, models.Criteria{SortBy: "popularity"})
	var sortErr *InvalidSortKeyError
	if !errors.As(err, &sortErr) {
		t.Errorf("unknown sort key: error = %v, want *InvalidSortKeyError", err)
	}

	_, err = Evaluate(cat, idx, nil, models.Criteria{SortBy: models.SortName, SortOrder: "sideways"})
	if !errors.As(err, &sortErr) {
		t.Errorf("unknown sort order: error = %v, want *InvalidSortKeyError", err)
	}
}

func TestEvaluateSearch(t *testing.T) {
	cat := loadFixture(t)
	idx := BuildIndex(cat)

	t.Run("Relevance follows index ranking", func(t *testing.T) {
		cr := models.Criteria{Search: "pika", SortBy: models.SortRelevance}
		got, err := Evaluate(cat, idx, nil, cr)
		if err != nil {
			t.Fatalf("Evaluate() error: %v", err)
		}
		positions := make([]int, len(got))
		for i, v := range got {
			positions[i] = v.Position
		}
		if want := idx.Search("pika"); !equalInts(positions, want) {
			t.Errorf("positions = %v, want index order %v", positions, want)
		}
	})

	t.Run("Search narrows filters", func(t *testing.T) {
		cr := models.Criteria{
			Search:  "pikachu",
			SortBy:  models.SortRelevance,
			Filters: map[models.FilterField][]string{models.FilterSet: {"swsh4"}},
		}
		got, err := Evaluate(cat, idx, nil, cr)
		if err != nil {
			t.Fatalf("Evaluate() error: %v", err)
		}
		if !equalStrings(viewIDs(got), []string{"swsh4-44"}) {
			t.Errorf("Evaluate() = %v, want [swsh4-44]", viewIDs(got))
		}
	})

	t.Run("Search with explicit sort", func(t *testing.T) {
		cr := models.Criteria{Search: "pikachu", SortBy: models.SortHP, SortOrder: models.SortAsc}
		got, err := Evaluate(cat, idx, nil, cr)
		if err != nil {
			t.Fatalf("Evaluate() error: %v", err)
		}
		if !equalStrings(viewIDs(got), []string{"base1-58", "swsh4-44"}) {
			t.Errorf("Evaluate() = %v, want [base1-58 swsh4-44]", viewIDs(got))
		}
	})

	t.Run("No index yet means no results", func(t *testing.T) {
		got, err := Evaluate(cat, nil, nil, models.Criteria{Search: "pikachu", SortBy: models.SortRelevance})
		if err != nil {
			t.Fatalf("Evaluate() error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Evaluate() = %v, want empty slice", viewIDs(got))
		}
	})

	t.Run("Index from another snapshot", func(t *testing.T) {
		stale := BuildIndex(loadFixture(t))
		_, err := Evaluate(cat, stale, nil, models.Criteria{Search: "pikachu", SortBy: models.SortRelevance})
		if !errors.Is(err, ErrStaleIndexMismatch) {
			t.Errorf("error = %v, want ErrStaleIndexMismatch", err)
		}
	})
}

func TestEvaluateSortOrders(t *testing.T) {
	cat := loadFixture(t)
	idx := BuildIndex(cat)
	prices := fixturePrices()

	tests := []struct {
		by    models.SortKey
		order models.SortOrder
		want  []string
	}{
		{models.DefaultSortBy, models.DefaultSortOrder, []string{"sv1-189", "sv1-1", "swsh4-44", "swsh4-186", "base1-58", "base1-14", "base1-4"}},
		{models.SortName, models.SortAsc, []string{"base1-4", "swsh4-186", "base1-58", "swsh4-44", "sv1-1", "sv1-189", "base1-14"}},
		{models.SortNumber, models.SortAsc, []string{"sv1-1", "base1-4", "base1-14", "swsh4-44", "base1-58", "swsh4-186", "sv1-189"}},
		{models.SortSet, models.SortAsc, []string{"base1-58", "base1-14", "base1-4", "sv1-189", "sv1-1", "swsh4-44", "swsh4-186"}},
		{models.SortHP, models.SortDesc, []string{"swsh4-44", "base1-4", "base1-14", "sv1-1", "swsh4-186", "base1-58", "sv1-189"}},
		// missing values sort last in both directions
		{models.SortPokedex, models.SortAsc, []string{"base1-4", "base1-58", "swsh4-44", "base1-14", "swsh4-186", "sv1-1", "sv1-189"}},
		{models.SortPokedex, models.SortDesc, []string{"sv1-1", "swsh4-186", "base1-14", "base1-58", "swsh4-44", "base1-4", "sv1-189"}},
		{models.SortRarity, models.SortAsc, []string{"base1-58", "swsh4-186", "sv1-1", "base1-14", "base1-4", "swsh4-44", "sv1-189"}},
		{models.SortRarity, models.SortDesc, []string{"swsh4-44", "base1-14", "base1-4", "base1-58", "swsh4-186", "sv1-1", "sv1-189"}},
		{models.SortPrice, models.SortAsc, []string{"swsh4-186", "base1-58", "base1-4", "base1-14", "swsh4-44", "sv1-189", "sv1-1"}},
		{models.SortPrice, models.SortDesc, []string{"base1-4", "base1-58", "swsh4-186", "base1-14", "swsh4-44", "sv1-189", "sv1-1"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.by)+" "+string(tt.order), func(t *testing.T) {
			got, err := Evaluate(cat, idx, prices, models.Criteria{SortBy: tt.by, SortOrder: tt.order})
			if err != nil {
				t.Fatalf("Evaluate() error: %v", err)
			}
			if !equalStrings(viewIDs(got), tt.want) {
				t.Errorf("Evaluate() = %v, want %v", viewIDs(got), tt.want)
			}
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	cat := loadFixture(t)
	idx := BuildIndex(cat)
	cr := models.Criteria{Search: "pi", SortBy: models.SortRarity, SortOrder: models.SortAsc}

	first, err := Evaluate(cat, idx, nil, cr)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := Evaluate(cat, idx, nil, cr)
		if !equalStrings(viewIDs(first), viewIDs(again)) {
			t.Fatalf("run %d = %v, want %v", i, viewIDs(again), viewIDs(first))
		}
	}
}

func TestDenormalize(t *testing.T) {
	cat := loadFixture(t)
	prices := fixturePrices()

	pikachu := Denormalize(cat, 0, prices)
	if pikachu.Set.Name != "Base" || pikachu.Set.ID != "base1" {
		t.Errorf("Set = %+v, want Base (base1)", pikachu.Set)
	}
	if pikachu.Rarity != "Common" || pikachu.Supertype != "Pokémon" || pikachu.Artist != "Mitsuhiro Arita" {
		t.Errorf("scalars = %q %q %q", pikachu.Rarity, pikachu.Supertype, pikachu.Artist)
	}
	if !equalStrings(pikachu.Types, []string{"Lightning"}) || len(pikachu.Attacks) != 2 || pikachu.Attacks[1].Name != "Thunder Jolt" {
		t.Errorf("lists = %v %+v", pikachu.Types, pikachu.Attacks)
	}
	if pikachu.Price == nil || pikachu.Price.Price(models.PriceConditionNM, models.PrintingNormal) != 1.50 {
		t.Errorf("Price = %+v, want NM Normal 1.50", pikachu.Price)
	}

	trainer := Denormalize(cat, 5, prices)
	if trainer.Rarity != "" {
		t.Errorf("absent rarity resolved to %q, want empty", trainer.Rarity)
	}
	if trainer.Price != nil {
		t.Errorf("absent price = %+v, want nil", trainer.Price)
	}

	if got := Denormalize(cat, 2, nil); got.Price != nil {
		t.Error("nil price table should leave Price nil")
	}
}

func TestDenormalizeDoesNotShareState(t *testing.T) {
	cat := loadFixture(t)
	prices := fixturePrices()

	view := Denormalize(cat, 0, prices)
	view.NationalPokedexNumbers[0] = 999
	view.Price.Points[0].PriceUSD = 999

	if got := cat.Cards[0].NationalPokedexNumbers[0]; got != 25 {
		t.Errorf("catalog pokedex number = %d after editing a view, want 25", got)
	}
	entry, _ := prices.Lookup("base1-58")
	if entry.Points[0].PriceUSD != 1.50 {
		t.Errorf("price table point = %v after editing a view, want 1.50", entry.Points[0].PriceUSD)
	}
	if again := Denormalize(cat, 0, prices); again.NationalPokedexNumbers[0] != 25 {
		t.Errorf("fresh view pokedex number = %d, want 25", again.NationalPokedexNumbers[0])
	}
}

func TestFilterOptions(t *testing.T) {
	opts := loadFixture(t).FilterOptions()

	tests := []struct {
		field models.FilterField
		want  []string
	}{
		{models.FilterSet, []string{"base1", "sv1", "swsh4"}},
		{models.FilterSeries, []string{"Base", "Scarlet & Violet", "Sword & Shield"}},
		{models.FilterRarity, []string{"Common", "Rare Holo", "Rare Holo VMAX"}},
		{models.FilterTypes, []string{"Fire", "Grass", "Lightning", "Water"}},
		{models.FilterArtist, []string{"aky CG Works", "Kanako Eo", "Ken Sugimori", "Mitsuhiro Arita"}},
		{models.FilterAbilities, []string{"Energy Burn"}},
	}

	for _, tt := range tests {
		if got := opts[tt.field]; !equalStrings(got, tt.want) {
			t.Errorf("FilterOptions()[%s] = %v, want %v", tt.field, got, tt.want)
		}
	}
	if len(opts) != len(models.AllFilterFields()) {
		t.Errorf("FilterOptions() has %d fields, want %d", len(opts), len(models.AllFilterFields()))
	}
}
