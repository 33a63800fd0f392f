package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

// Evaluate turns a catalog snapshot, its search index, the price table and
// the criteria into the ordered list of resolved cards.
//
// Filters match resolved values (case-insensitive); a missing filter field
// means no constraint. A non-empty search restricts results to index
// matches. With relevance sorting the index ranking is the final order;
// any other key sorts with missing values last in both directions and ties
// broken by catalog order.
//
// Evaluate is pure: identical inputs give identical output, so callers can
// memoize on the input identities.
func Evaluate(c *Catalog, idx *SearchIndex, prices *models.PriceTable, cr models.Criteria) ([]models.ViewCard, error) {
	filters, err := compileFilters(c, cr.Filters)
	if err != nil {
		return nil, err
	}
	sortBy, order, err := resolveSort(cr)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return []models.ViewCard{}, nil
	}

	var candidates []int
	if search := strings.TrimSpace(cr.Search); search != "" {
		if idx == nil {
			return []models.ViewCard{}, nil
		}
		if !idx.belongsTo(c) {
			return nil, ErrStaleIndexMismatch
		}
		candidates = idx.Search(search)
	} else {
		candidates = make([]int, len(c.Cards))
		for i := range candidates {
			candidates[i] = i
		}
	}

	kept := candidates[:0]
	for _, pos := range candidates {
		if matchesAll(&c.Cards[pos], filters) {
			kept = append(kept, pos)
		}
	}

	if sortBy != models.SortRelevance {
		kept = sortPositions(c, prices, kept, sortBy, order)
	}

	out := make([]models.ViewCard, len(kept))
	for i, pos := range kept {
		out[i] = Denormalize(c, pos, prices)
	}
	return out, nil
}

// validateCriteria checks filter fields and sort without touching a
// catalog. Empty filter lists are checked too, so an unknown field is an
// error whatever its values.
func validateCriteria(cr models.Criteria) error {
	if _, err := compileFilters(nil, cr.Filters); err != nil {
		return err
	}
	_, _, err := resolveSort(cr)
	return err
}

func resolveSort(cr models.Criteria) (models.SortKey, models.SortOrder, error) {
	sortBy, order := cr.SortBy, cr.SortOrder
	if sortBy == "" {
		sortBy = models.DefaultSortBy
	}
	if order == "" {
		order = models.DefaultSortOrder
	}
	if !sortBy.IsValid() {
		return "", "", &InvalidSortKeyError{Key: string(sortBy)}
	}
	if !order.IsValid() {
		return "", "", &InvalidSortKeyError{Key: string(order)}
	}
	return sortBy, order, nil
}

// refFilter accepts cards whose ref for field is in accept. The accepted
// refs are resolved once from the lookup tables, so per-card checks never
// compare strings.
type refFilter struct {
	field  models.FilterField
	accept map[models.Ref]struct{}
}

func compileFilters(c *Catalog, filters map[models.FilterField][]string) ([]refFilter, error) {
	fields := make([]models.FilterField, 0, len(filters))
	for f := range filters {
		if !f.IsValid() {
			return nil, &InvalidFilterFieldError{Field: f}
		}
		fields = append(fields, f)
	}
	if c == nil {
		return nil, nil
	}
	slices.Sort(fields)

	out := make([]refFilter, 0, len(fields))
	for _, field := range fields {
		values := filters[field]
		if len(values) == 0 {
			continue
		}
		wanted := make(map[string]struct{}, len(values))
		for _, v := range values {
			wanted[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
		}
		out = append(out, refFilter{field: field, accept: acceptedRefs(&c.Lookups, field, wanted)})
	}
	return out, nil
}

func acceptedRefs(l *Lookups, field models.FilterField, wanted map[string]struct{}) map[models.Ref]struct{} {
	accept := make(map[models.Ref]struct{})
	has := func(s string) bool {
		_, ok := wanted[strings.ToLower(s)]
		return ok
	}
	addStrings := func(t LookupTable[string]) {
		for i, v := range t.values {
			if has(v) {
				accept[models.Ref(i)] = struct{}{}
			}
		}
	}

	switch field {
	case models.FilterSet:
		for i, s := range l.Sets.values {
			if has(s.ID) || has(s.Name) {
				accept[models.Ref(i)] = struct{}{}
			}
		}
	case models.FilterSeries:
		for i, s := range l.Sets.values {
			if has(s.Series) {
				accept[models.Ref(i)] = struct{}{}
			}
		}
	case models.FilterRarity:
		addStrings(l.Rarities)
	case models.FilterSupertype:
		addStrings(l.Supertypes)
	case models.FilterArtist:
		addStrings(l.Artists)
	case models.FilterTypes:
		addStrings(l.Types)
	case models.FilterSubtypes:
		addStrings(l.Subtypes)
	case models.FilterRules:
		addStrings(l.Rules)
	case models.FilterAbilities:
		for i, a := range l.Abilities.values {
			if has(a.Name) {
				accept[models.Ref(i)] = struct{}{}
			}
		}
	case models.FilterAttacks:
		for i, a := range l.Attacks.values {
			if has(a.Name) {
				accept[models.Ref(i)] = struct{}{}
			}
		}
	}
	return accept
}

func (f refFilter) match(card *models.NormalizedCard) bool {
	switch f.field {
	case models.FilterSet, models.FilterSeries:
		return f.has(card.SetRef)
	case models.FilterRarity:
		return f.has(card.RarityRef)
	case models.FilterSupertype:
		return f.has(card.SupertypeRef)
	case models.FilterArtist:
		return f.has(card.ArtistRef)
	case models.FilterTypes:
		return f.any(card.TypeRefs)
	case models.FilterSubtypes:
		return f.any(card.SubtypeRefs)
	case models.FilterAbilities:
		return f.any(card.AbilityRefs)
	case models.FilterAttacks:
		return f.any(card.AttackRefs)
	case models.FilterRules:
		return f.any(card.RuleRefs)
	}
	return false
}

func (f refFilter) has(ref models.Ref) bool {
	_, ok := f.accept[ref]
	return ok
}

func (f refFilter) any(refs []models.Ref) bool {
	for _, r := range refs {
		if f.has(r) {
			return true
		}
	}
	return false
}

func matchesAll(card *models.NormalizedCard, filters []refFilter) bool {
	for _, f := range filters {
		if !f.match(card) {
			return false
		}
	}
	return true
}

// sortValue is the extracted sort key of one card
type sortValue struct {
	pos     int
	present bool
	num     float64
	str     string
}

func sortPositions(c *Catalog, prices *models.PriceTable, positions []int, by models.SortKey, order models.SortOrder) []int {
	values := make([]sortValue, len(positions))
	for i, pos := range positions {
		values[i] = extractSortValue(c, prices, pos, by)
	}

	desc := order == models.SortDesc
	slices.SortFunc(values, func(a, b sortValue) int {
		if a.present != b.present {
			if a.present {
				return -1
			}
			return 1
		}
		if a.present {
			r := cmp.Compare(a.num, b.num)
			if r == 0 {
				r = strings.Compare(a.str, b.str)
			}
			if desc {
				r = -r
			}
			if r != 0 {
				return r
			}
		}
		return cmp.Compare(a.pos, b.pos)
	})

	out := make([]int, len(values))
	for i, v := range values {
		out[i] = v.pos
	}
	return out
}

func extractSortValue(c *Catalog, prices *models.PriceTable, pos int, by models.SortKey) sortValue {
	card := &c.Cards[pos]
	l := &c.Lookups
	v := sortValue{pos: pos}

	str := func(s string, ok bool) {
		if ok && s != "" {
			v.present = true
			v.str = strings.ToLower(s)
		}
	}
	num := func(n int, ok bool) {
		if ok {
			v.present = true
			v.num = float64(n)
		}
	}

	switch by {
	case models.SortName:
		str(card.Name, true)
	case models.SortNumber:
		num(card.SortAux.Number, card.SortAux.Number >= 0)
		if v.present {
			v.str = strings.ToLower(card.Number)
		}
	case models.SortSet:
		set, ok := l.Sets.Get(card.SetRef)
		str(set.Name, ok)
	case models.SortReleaseDate:
		num(card.SortAux.Release, card.SortAux.Release > 0)
	case models.SortPokedex:
		num(card.SortAux.Pokedex, card.SortAux.Pokedex > 0)
	case models.SortRarity:
		str(l.Rarities.Get(card.RarityRef))
	case models.SortArtist:
		str(l.Artists.Get(card.ArtistRef))
	case models.SortHP:
		num(card.SortAux.HP, card.SortAux.HP > 0)
	case models.SortPrice:
		if entry, ok := prices.Lookup(card.ID); ok {
			if market, ok := entry.Market(); ok {
				v.present = true
				v.num = market
			}
		}
	}
	return v
}

// Denormalize resolves every ref of the card at pos and attaches its price.
// An absent price leaves Price nil. The view shares no slices with the
// catalog or the price table.
func Denormalize(c *Catalog, pos int, prices *models.PriceTable) models.ViewCard {
	card := &c.Cards[pos]
	l := &c.Lookups

	view := models.ViewCard{
		ID:                     card.ID,
		Name:                   card.Name,
		Number:                 card.Number,
		HP:                     card.HP,
		EvolvesFrom:            card.EvolvesFrom,
		FlavorText:             card.FlavorText,
		ImageURL:               card.ImageURL,
		ImageURLLarge:          card.ImageURLLarge,
		NationalPokedexNumbers: slices.Clone(card.NationalPokedexNumbers),
		Position:               pos,
	}
	view.Set, _ = l.Sets.Get(card.SetRef)
	view.Rarity, _ = l.Rarities.Get(card.RarityRef)
	view.Supertype, _ = l.Supertypes.Get(card.SupertypeRef)
	view.Artist, _ = l.Artists.Get(card.ArtistRef)
	view.Types = resolveAll(l.Types, card.TypeRefs)
	view.Subtypes = resolveAll(l.Subtypes, card.SubtypeRefs)
	view.Abilities = resolveAll(l.Abilities, card.AbilityRefs)
	view.Attacks = resolveAll(l.Attacks, card.AttackRefs)
	view.Rules = resolveAll(l.Rules, card.RuleRefs)

	if entry, ok := prices.Lookup(card.ID); ok {
		entry.Points = slices.Clone(entry.Points)
		view.Price = entry
	}
	return view
}

// cloneViews copies views deeply enough that a caller can edit the result
// without touching another caller's copy.
func cloneViews(views []models.ViewCard) []models.ViewCard {
	out := slices.Clone(views)
	for i := range out {
		v := &out[i]
		v.NationalPokedexNumbers = slices.Clone(v.NationalPokedexNumbers)
		v.Types = slices.Clone(v.Types)
		v.Subtypes = slices.Clone(v.Subtypes)
		v.Abilities = slices.Clone(v.Abilities)
		v.Attacks = slices.Clone(v.Attacks)
		v.Rules = slices.Clone(v.Rules)
		if v.Price != nil {
			price := *v.Price
			price.Points = slices.Clone(price.Points)
			v.Price = &price
		}
	}
	return out
}

func resolveAll[T any](t LookupTable[T], refs []models.Ref) []T {
	if len(refs) == 0 {
		return nil
	}
	out := make([]T, 0, len(refs))
	for _, r := range refs {
		if v, ok := t.Get(r); ok {
			out = append(out, v)
		}
	}
	return out
}

// FilterOptions lists the distinct values each filter field can take in this
// snapshot, sorted case-insensitively. Sets are listed by id.
func (c *Catalog) FilterOptions() map[models.FilterField][]string {
	l := &c.Lookups
	opts := make(map[models.FilterField][]string, len(models.AllFilterFields()))

	setIDs := make([]string, 0, l.Sets.Len())
	series := make([]string, 0)
	for _, s := range l.Sets.values {
		setIDs = append(setIDs, s.ID)
		series = append(series, s.Series)
	}
	abilities := make([]string, 0, l.Abilities.Len())
	for _, a := range l.Abilities.values {
		abilities = append(abilities, a.Name)
	}
	attacks := make([]string, 0, l.Attacks.Len())
	for _, a := range l.Attacks.values {
		attacks = append(attacks, a.Name)
	}

	opts[models.FilterSet] = distinctSorted(setIDs)
	opts[models.FilterSeries] = distinctSorted(series)
	opts[models.FilterRarity] = distinctSorted(l.Rarities.values)
	opts[models.FilterSupertype] = distinctSorted(l.Supertypes.values)
	opts[models.FilterArtist] = distinctSorted(l.Artists.values)
	opts[models.FilterTypes] = distinctSorted(l.Types.values)
	opts[models.FilterSubtypes] = distinctSorted(l.Subtypes.values)
	opts[models.FilterAbilities] = distinctSorted(abilities)
	opts[models.FilterAttacks] = distinctSorted(attacks)
	opts[models.FilterRules] = distinctSorted(l.Rules.values)
	return opts
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b string) int {
		if r := strings.Compare(strings.ToLower(a), strings.ToLower(b)); r != 0 {
			return r
		}
		return strings.Compare(a, b)
	})
	return out
}
