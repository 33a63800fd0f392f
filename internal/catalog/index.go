package catalog

import (
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// Match tiers, best first. Everything at or above tierHaystack is an exact
// prefix/substring match and always outranks the typo and subsequence tiers.
const (
	tierExactName   = 1000
	tierVariantName = 900
	tierNameWord    = 800
	tierNamePrefix  = 700
	tierInnerWord   = 600
	tierNameSubstr  = 500
	tierHaystack    = 400
	tierAllTokens   = 300
	tierTypo        = 200
	tierSubsequence = 100
)

// minTypoTokenLen is the shortest query token matched with edit distance;
// shorter tokens must appear verbatim.
const minTypoTokenLen = 4

// Pokemon card name suffixes that make "charizard" a near-exact hit for "Charizard VMAX"
var variantSuffixes = []string{" v", " vmax", " vstar", " v-union", " ex", " gx"}

// SearchIndex is the fuzzy text index over one catalog snapshot. The index
// and its haystack are built together and tied to the catalog ID; they are
// never rebuilt separately.
type SearchIndex struct {
	catalogID uuid.UUID
	haystack  []string
	names     []string
	words     map[string][]int // word -> ascending catalog positions
	vocab     []string         // sorted distinct words
}

// BuildIndex derives the haystack for every card and indexes it.
// Haystack fields are concatenated in a fixed order: name, number, set name,
// set id, series, supertype, subtypes, types, ability names, attack names, artist.
func BuildIndex(c *Catalog) *SearchIndex {
	idx := &SearchIndex{
		catalogID: c.ID,
		haystack:  make([]string, len(c.Cards)),
		names:     make([]string, len(c.Cards)),
		words:     make(map[string][]int),
	}

	l := &c.Lookups
	for pos := range c.Cards {
		card := &c.Cards[pos]
		parts := []string{card.Name, card.Number}
		if set, ok := l.Sets.Get(card.SetRef); ok {
			parts = append(parts, set.Name, set.ID, set.Series)
		}
		if v, ok := l.Supertypes.Get(card.SupertypeRef); ok {
			parts = append(parts, v)
		}
		for _, ref := range card.SubtypeRefs {
			v, _ := l.Subtypes.Get(ref)
			parts = append(parts, v)
		}
		for _, ref := range card.TypeRefs {
			v, _ := l.Types.Get(ref)
			parts = append(parts, v)
		}
		for _, ref := range card.AbilityRefs {
			v, _ := l.Abilities.Get(ref)
			parts = append(parts, v.Name)
		}
		for _, ref := range card.AttackRefs {
			v, _ := l.Attacks.Get(ref)
			parts = append(parts, v.Name)
		}
		if v, ok := l.Artists.Get(card.ArtistRef); ok {
			parts = append(parts, v)
		}

		idx.names[pos] = normalizeSearchText(card.Name)
		idx.haystack[pos] = normalizeSearchText(strings.Join(parts, " "))

		for _, w := range searchTokens(idx.haystack[pos]) {
			positions := idx.words[w]
			if len(positions) == 0 || positions[len(positions)-1] != pos {
				idx.words[w] = append(positions, pos)
			}
		}
	}

	idx.vocab = make([]string, 0, len(idx.words))
	for w := range idx.words {
		idx.vocab = append(idx.vocab, w)
	}
	sort.Strings(idx.vocab)

	return idx
}

// CatalogID is the snapshot this index was built from
func (ix *SearchIndex) CatalogID() uuid.UUID {
	return ix.catalogID
}

func (ix *SearchIndex) Len() int {
	return len(ix.haystack)
}

// Haystack returns the searchable text derived for a catalog position
func (ix *SearchIndex) Haystack(pos int) string {
	if pos < 0 || pos >= len(ix.haystack) {
		return ""
	}
	return ix.haystack[pos]
}

// belongsTo reports whether the index was built from c
func (ix *SearchIndex) belongsTo(c *Catalog) bool {
	return ix != nil && c != nil && ix.catalogID == c.ID && len(ix.haystack) == len(c.Cards)
}

type hit struct {
	pos   int
	tier  int
	score int // in-tier score, higher is better
}

// Search returns catalog positions matching query, best match first.
// Ties are broken by catalog position, so identical inputs always give
// identical output. A blank query returns no positions.
func (ix *SearchIndex) Search(query string) []int {
	q := normalizeSearchText(query)
	if q == "" || len(ix.haystack) == 0 {
		return []int{}
	}
	tokens := searchTokens(q)

	tiers := make([]int, len(ix.haystack))
	hits := make([]hit, 0)

	for pos, name := range ix.names {
		tier := nameTier(name, q)
		if tier == 0 {
			hay := ix.haystack[pos]
			switch {
			case strings.Contains(hay, q):
				tier = tierHaystack
			case len(tokens) > 1 && containsAll(hay, tokens):
				tier = tierAllTokens
			}
		}
		if tier > 0 {
			tiers[pos] = tier
			hits = append(hits, hit{pos: pos, tier: tier})
		}
	}

	for pos, edits := range ix.typoMatches(tokens) {
		if tiers[pos] == 0 {
			tiers[pos] = tierTypo
			hits = append(hits, hit{pos: pos, tier: tierTypo, score: -edits})
		}
	}

	for _, m := range fuzzy.FindFrom(q, nameSource(ix.names)) {
		if tiers[m.Index] == 0 {
			tiers[m.Index] = tierSubsequence
			hits = append(hits, hit{pos: m.Index, tier: tierSubsequence, score: m.Score})
		}
	}

	slices.SortFunc(hits, func(a, b hit) int {
		if a.tier != b.tier {
			return b.tier - a.tier
		}
		if a.score != b.score {
			return b.score - a.score
		}
		return a.pos - b.pos
	})

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.pos
	}
	return out
}

// nameTier scores how directly the card name matches the whole query
func nameTier(name, q string) int {
	switch {
	case name == q:
		return tierExactName
	case isVariantOf(name, q):
		return tierVariantName
	case strings.HasPrefix(name, q+" "):
		return tierNameWord
	case strings.HasPrefix(name, q):
		return tierNamePrefix
	case strings.Contains(name, " "+q):
		return tierInnerWord
	case strings.Contains(name, q):
		return tierNameSubstr
	}
	return 0
}

func isVariantOf(name, q string) bool {
	for _, suffix := range variantSuffixes {
		if name == q+suffix {
			return true
		}
	}
	return false
}

func containsAll(hay string, tokens []string) bool {
	for _, t := range tokens {
		if !strings.Contains(hay, t) {
			return false
		}
	}
	return true
}

// typoMatches finds positions where every query token either appears
// verbatim or is within the edit bound of a haystack word. The map value is
// the total number of edits used.
func (ix *SearchIndex) typoMatches(tokens []string) map[int]int {
	fuzzyTokens := 0
	for _, t := range tokens {
		if utf8.RuneCountInString(t) >= minTypoTokenLen {
			fuzzyTokens++
		}
	}
	if fuzzyTokens == 0 {
		return nil
	}

	var result map[int]int
	for i, t := range tokens {
		perToken := ix.tokenMatches(t)
		if i == 0 {
			result = perToken
		} else {
			for pos, edits := range result {
				extra, ok := perToken[pos]
				if !ok {
					delete(result, pos)
					continue
				}
				result[pos] = edits + extra
			}
		}
		if len(result) == 0 {
			return nil
		}
	}
	return result
}

// tokenMatches maps positions to the fewest edits needed to match token
func (ix *SearchIndex) tokenMatches(token string) map[int]int {
	matches := make(map[int]int)
	n := utf8.RuneCountInString(token)
	if n < minTypoTokenLen {
		for pos, hay := range ix.haystack {
			if strings.Contains(hay, token) {
				matches[pos] = 0
			}
		}
		return matches
	}

	bound := maxEdits(n)
	for _, w := range ix.vocab {
		wn := utf8.RuneCountInString(w)
		if wn < n-bound || wn > n+bound {
			continue
		}
		d := levenshtein.ComputeDistance(token, w)
		if d > bound {
			continue
		}
		for _, pos := range ix.words[w] {
			if prev, ok := matches[pos]; !ok || d < prev {
				matches[pos] = d
			}
		}
	}
	return matches
}

func maxEdits(runes int) int {
	if runes >= 8 {
		return 2
	}
	return 1
}

// nameSource adapts card names to fuzzy.Source
type nameSource []string

func (s nameSource) String(i int) string { return s[i] }
func (s nameSource) Len() int            { return len(s) }

// normalizeSearchText lowercases, unifies apostrophes and collapses whitespace
func normalizeSearchText(s string) string {
	s = strings.NewReplacer("’", "'", "‘", "'", "é", "e").Replace(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

// searchTokens splits normalized text into words, trimming punctuation
func searchTokens(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := strings.Trim(f, ".,!?\"'();:-"); w != "" {
			out = append(out, w)
		}
	}
	return out
}
