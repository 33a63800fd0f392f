package catalog

import (
	"strings"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

const (
	// DefaultSuggestLimit is used when a caller passes a non-positive limit
	DefaultSuggestLimit = 5

	// UnknownSetName is shown for a suggestion whose set cannot be resolved
	UnknownSetName = "Unknown Set"
)

// Suggest returns up to limit autocomplete entries for a partial query.
// It returns an empty slice when the query is blank or the catalog and index
// are not loaded (or not a matched pair). It never mutates its inputs.
func Suggest(c *Catalog, idx *SearchIndex, query string, limit int) []models.Suggestion {
	if strings.TrimSpace(query) == "" || !idx.belongsTo(c) {
		return []models.Suggestion{}
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	positions := idx.Search(query)
	if len(positions) > limit {
		positions = positions[:limit]
	}

	out := make([]models.Suggestion, 0, len(positions))
	for _, pos := range positions {
		card := &c.Cards[pos]
		set := models.SuggestionSet{Name: UnknownSetName}
		if s, ok := c.Set(card.SetRef); ok {
			set = models.SuggestionSet{Name: s.Name, PrintedTotal: s.PrintedTotal}
		}
		out = append(out, models.Suggestion{
			ID:     card.ID,
			Name:   card.Name,
			Number: card.Number,
			Set:    set,
		})
	}
	return out
}
