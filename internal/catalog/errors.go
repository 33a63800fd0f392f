package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

var (
	// ErrIndexNotReady is reported when a search is requested before a
	// catalog and its index are loaded. Query paths treat it as an empty
	// result; it only surfaces where a caller asks for readiness explicitly.
	ErrIndexNotReady = errors.New("search index not ready")

	// ErrStaleIndexMismatch means a search index was paired with a catalog
	// it was not built from. This is a programming error.
	ErrStaleIndexMismatch = errors.New("search index does not belong to the loaded catalog")

	// ErrSuperseded is returned by a catalog load that finished after a newer
	// load had already started.
	ErrSuperseded = errors.New("catalog load superseded by a newer load")
)

// maxListedRecords caps how many offending ids an error message spells out
const maxListedRecords = 10

// DataIntegrityError reports records whose refs do not resolve in the
// catalog lookup tables. The catalog load that produced it is rejected.
type DataIntegrityError struct {
	RecordIDs []string
}

func (e *DataIntegrityError) Error() string {
	ids := e.RecordIDs
	more := 0
	if len(ids) > maxListedRecords {
		more = len(ids) - maxListedRecords
		ids = ids[:maxListedRecords]
	}
	msg := fmt.Sprintf("catalog integrity: %d records with unresolved references: %s", len(e.RecordIDs), strings.Join(ids, ", "))
	if more > 0 {
		msg += fmt.Sprintf(" (+%d more)", more)
	}
	return msg
}

// InvalidFilterFieldError is returned when criteria name a filter field
// outside the catalog schema.
type InvalidFilterFieldError struct {
	Field models.FilterField
}

func (e *InvalidFilterFieldError) Error() string {
	return fmt.Sprintf("invalid filter field %q", string(e.Field))
}

// InvalidSortKeyError is returned when criteria carry an unknown sort key or order
type InvalidSortKeyError struct {
	Key string
}

func (e *InvalidSortKeyError) Error() string {
	return fmt.Sprintf("invalid sort %q", e.Key)
}
