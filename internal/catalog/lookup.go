package catalog

import (
	"encoding/json"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

// LookupTable resolves a Ref to its attribute value. Tables are built once
// per catalog load and never mutated afterwards.
type LookupTable[T any] struct {
	values []T
}

// NewLookupTable builds a table whose refs are the positions in values
func NewLookupTable[T any](values []T) LookupTable[T] {
	return LookupTable[T]{values: append([]T(nil), values...)}
}

// Get resolves ref. The bool is false for NoRef and for dangling refs.
func (t LookupTable[T]) Get(ref models.Ref) (T, bool) {
	if ref < 0 || int(ref) >= len(t.values) {
		var zero T
		return zero, false
	}
	return t.values[ref], true
}

func (t LookupTable[T]) Has(ref models.Ref) bool {
	return ref >= 0 && int(ref) < len(t.values)
}

func (t LookupTable[T]) Len() int {
	return len(t.values)
}

// Values returns a copy of the table contents in ref order
func (t LookupTable[T]) Values() []T {
	return append([]T(nil), t.values...)
}

func (t LookupTable[T]) MarshalJSON() ([]byte, error) {
	if t.values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.values)
}

func (t *LookupTable[T]) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &t.values)
}

// Lookups is the full set of tables a catalog snapshot's refs point into
type Lookups struct {
	Sets       LookupTable[models.SetEntry] `json:"sets"`
	Rarities   LookupTable[string]          `json:"rarities"`
	Supertypes LookupTable[string]          `json:"supertypes"`
	Artists    LookupTable[string]          `json:"artists"`
	Types      LookupTable[string]          `json:"types"`
	Subtypes   LookupTable[string]          `json:"subtypes"`
	Abilities  LookupTable[models.Ability]  `json:"abilities"`
	Attacks    LookupTable[models.Attack]   `json:"attacks"`
	Rules      LookupTable[string]          `json:"rules"`
}

// interner assigns stable refs to values in first-seen order
type interner[T comparable] struct {
	index  map[T]models.Ref
	values []T
}

func newInterner[T comparable]() *interner[T] {
	return &interner[T]{index: make(map[T]models.Ref)}
}

func (in *interner[T]) ref(v T) models.Ref {
	if r, ok := in.index[v]; ok {
		return r
	}
	r := models.Ref(len(in.values))
	in.index[v] = r
	in.values = append(in.values, v)
	return r
}

// optional interns v, mapping the zero value to NoRef
func (in *interner[T]) optional(v T) models.Ref {
	var zero T
	if v == zero {
		return models.NoRef
	}
	return in.ref(v)
}

func (in *interner[T]) table() LookupTable[T] {
	return LookupTable[T]{values: in.values}
}
