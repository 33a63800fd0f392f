package models

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// FilterField names a filterable card attribute
type FilterField string

const (
	FilterSet       FilterField = "set"
	FilterSeries    FilterField = "series"
	FilterRarity    FilterField = "rarity"
	FilterSupertype FilterField = "supertype"
	FilterArtist    FilterField = "artist"
	FilterTypes     FilterField = "types"
	FilterSubtypes  FilterField = "subtypes"
	FilterAbilities FilterField = "abilities"
	FilterAttacks   FilterField = "attacks"
	FilterRules     FilterField = "rules"
)

// AllFilterFields returns the closed set of filterable fields
func AllFilterFields() []FilterField {
	return []FilterField{
		FilterSet,
		FilterSeries,
		FilterRarity,
		FilterSupertype,
		FilterArtist,
		FilterTypes,
		FilterSubtypes,
		FilterAbilities,
		FilterAttacks,
		FilterRules,
	}
}

// IsValid reports whether f is part of the filter schema
func (f FilterField) IsValid() bool {
	for _, known := range AllFilterFields() {
		if f == known {
			return true
		}
	}
	return false
}

// IsMultiValued is true for fields where a card carries a list of values;
// those filters match on intersection instead of equality.
func (f FilterField) IsMultiValued() bool {
	switch f {
	case FilterTypes, FilterSubtypes, FilterAbilities, FilterAttacks, FilterRules:
		return true
	}
	return false
}

// SortKey names a sortable attribute, or relevance
type SortKey string

const (
	SortRelevance   SortKey = "relevance"
	SortName        SortKey = "name"
	SortNumber      SortKey = "number"
	SortSet         SortKey = "set"
	SortReleaseDate SortKey = "releaseDate"
	SortPokedex     SortKey = "pokedex"
	SortRarity      SortKey = "rarity"
	SortArtist      SortKey = "artist"
	SortHP          SortKey = "hp"
	SortPrice       SortKey = "price"
)

// AllSortKeys returns every accepted sort key, relevance included
func AllSortKeys() []SortKey {
	return []SortKey{
		SortRelevance,
		SortName,
		SortNumber,
		SortSet,
		SortReleaseDate,
		SortPokedex,
		SortRarity,
		SortArtist,
		SortHP,
		SortPrice,
	}
}

func (k SortKey) IsValid() bool {
	for _, known := range AllSortKeys() {
		if k == known {
			return true
		}
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// Defaults applied to a fresh criteria state and to unset fields of a
// wholesale replacement. Newest sets first.
const (
	DefaultSortBy    = SortReleaseDate
	DefaultSortOrder = SortDesc
)

// Criteria is the current catalog query.
// PreviousSortBy is only set while SortBy is relevance and remembers the key
// that was active before a search term switched to relevance.
type Criteria struct {
	Filters        map[FilterField][]string `json:"filters,omitempty"`
	Search         string                   `json:"search,omitempty"`
	SortBy         SortKey                  `json:"sort_by"`
	SortOrder      SortOrder                `json:"sort_order"`
	PreviousSortBy SortKey                  `json:"previous_sort_by,omitempty"`
}

// Clone returns a deep copy of the criteria
func (c Criteria) Clone() Criteria {
	out := c
	if c.Filters != nil {
		out.Filters = make(map[FilterField][]string, len(c.Filters))
		for k, v := range c.Filters {
			out.Filters[k] = append([]string(nil), v...)
		}
	}
	return out
}

// Key returns a canonical string for the query part of the criteria (the
// fields that change results), suitable as a cache key.
func (c Criteria) Key() string {
	fields := make([]string, 0, len(c.Filters))
	for f, values := range c.Filters {
		if len(values) == 0 {
			continue
		}
		vs := make([]string, len(values))
		for i, v := range values {
			vs[i] = strings.ToLower(v)
		}
		sort.Strings(vs)
		fields = append(fields, string(f)+"="+strings.Join(vs, "\x1f"))
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(c.Search)))
	b.WriteString("\x1e")
	b.WriteString(string(c.SortBy))
	b.WriteString("\x1e")
	b.WriteString(string(c.SortOrder))
	b.WriteString("\x1e")
	b.WriteString(strings.Join(fields, "\x1d"))
	return b.String()
}

// CriteriaPatch is an incremental criteria update. Nil pointers leave the
// field unchanged; a filter key mapped to an empty list removes that filter.
type CriteriaPatch struct {
	Filters   map[FilterField][]string
	Search    *string
	SortBy    *SortKey
	SortOrder *SortOrder
}

// ParseCriteria reads criteria from a shareable query string:
// q, sort, order and one parameter per filter field. Filter values may be
// repeated or comma-separated. Unknown parameters are ignored; the caller
// decides whether to pass them as filters.
func ParseCriteria(values url.Values) (Criteria, error) {
	c := Criteria{Search: strings.TrimSpace(values.Get("q"))}

	if s := values.Get("sort"); s != "" {
		key := SortKey(s)
		if !key.IsValid() {
			return Criteria{}, fmt.Errorf("unknown sort key %q", s)
		}
		c.SortBy = key
	}
	if o := values.Get("order"); o != "" {
		order := SortOrder(strings.ToLower(o))
		if !order.IsValid() {
			return Criteria{}, fmt.Errorf("unknown sort order %q", o)
		}
		c.SortOrder = order
	}

	for _, field := range AllFilterFields() {
		raw, ok := values[string(field)]
		if !ok {
			continue
		}
		var accepted []string
		for _, r := range raw {
			for _, v := range strings.Split(r, ",") {
				if v = strings.TrimSpace(v); v != "" {
					accepted = append(accepted, v)
				}
			}
		}
		if len(accepted) == 0 {
			continue
		}
		if c.Filters == nil {
			c.Filters = make(map[FilterField][]string)
		}
		c.Filters[field] = accepted
	}

	return c, nil
}
