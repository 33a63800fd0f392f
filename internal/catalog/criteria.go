package catalog

import (
	"strings"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

// CriteriaState holds the criteria of one browsing session and applies the
// transitions that keep relevance sorting and the remembered sort in step.
// It is not safe for concurrent use; each session owns its own state.
type CriteriaState struct {
	current models.Criteria
}

// NewCriteriaState starts with the default sort, no filters and no search
func NewCriteriaState() *CriteriaState {
	return &CriteriaState{current: DefaultCriteria()}
}

// DefaultCriteria is the initial query state
func DefaultCriteria() models.Criteria {
	return models.Criteria{
		SortBy:    models.DefaultSortBy,
		SortOrder: models.DefaultSortOrder,
	}
}

// Criteria returns a copy of the current criteria
func (s *CriteriaState) Criteria() models.Criteria {
	return s.current.Clone()
}

// SetFilters merges an incremental update and returns the new criteria
func (s *CriteriaState) SetFilters(p models.CriteriaPatch) models.Criteria {
	s.current = ApplyPatch(s.current, p)
	return s.current.Clone()
}

// ReplaceFilters replaces the criteria wholesale and returns the result
func (s *CriteriaState) ReplaceFilters(c models.Criteria) models.Criteria {
	s.current = Replace(c)
	return s.current.Clone()
}

// ApplyPatch merges p on top of prev.
//
// Introducing a search term captures the active sort into PreviousSortBy and
// switches to relevance. Clearing the term restores the captured sort (or
// the default) if relevance is still active, and forgets the capture.
// Picking an explicit non-relevance sort also forgets the capture.
func ApplyPatch(prev models.Criteria, p models.CriteriaPatch) models.Criteria {
	next := prev.Clone()

	for field, values := range p.Filters {
		values = compactValues(values)
		if len(values) == 0 {
			delete(next.Filters, field)
			continue
		}
		if next.Filters == nil {
			next.Filters = make(map[models.FilterField][]string)
		}
		next.Filters[field] = values
	}

	if p.SortOrder != nil {
		next.SortOrder = *p.SortOrder
	}
	if p.SortBy != nil {
		next.SortBy = *p.SortBy
		if next.SortBy != models.SortRelevance {
			next.PreviousSortBy = ""
		}
	}

	if p.Search != nil {
		term := strings.TrimSpace(*p.Search)
		hadSearch := strings.TrimSpace(prev.Search) != ""
		next.Search = term

		switch {
		case term != "" && !hadSearch:
			if next.SortBy != models.SortRelevance {
				next.PreviousSortBy = next.SortBy
			}
			next.SortBy = models.SortRelevance
		case term == "" && hadSearch:
			if next.SortBy == models.SortRelevance {
				next.SortBy = next.PreviousSortBy
				if next.SortBy == "" {
					next.SortBy = models.DefaultSortBy
				}
			}
			next.PreviousSortBy = ""
		}
	}

	return next
}

// Replace normalizes externally supplied criteria: unset sort fields take
// the defaults and PreviousSortBy is always cleared.
func Replace(c models.Criteria) models.Criteria {
	next := models.Criteria{
		Search:    strings.TrimSpace(c.Search),
		SortBy:    c.SortBy,
		SortOrder: c.SortOrder,
	}
	if next.SortBy == "" {
		next.SortBy = models.DefaultSortBy
	}
	if next.SortOrder == "" {
		next.SortOrder = models.DefaultSortOrder
	}
	for field, values := range c.Filters {
		values = compactValues(values)
		if len(values) == 0 {
			continue
		}
		if next.Filters == nil {
			next.Filters = make(map[models.FilterField][]string)
		}
		next.Filters[field] = values
	}
	return next
}

// FromQuery turns a standalone criteria snapshot (a shared link, CLI flags)
// into active criteria. A search term without an explicit sort ranks by
// relevance and remembers the default sort, as if typed into a fresh state.
func FromQuery(c models.Criteria) models.Criteria {
	search := strings.TrimSpace(c.Search)
	if search == "" || c.SortBy != "" {
		return Replace(c)
	}
	c.Search = ""
	return ApplyPatch(Replace(c), models.CriteriaPatch{Search: &search})
}

func compactValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
