package catalog

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codyseavey/tcg-catalog/internal/metrics"
	"github.com/codyseavey/tcg-catalog/internal/models"
)

const defaultQueryCacheSize = 256

// snapshot pairs a catalog with the index built from it. The pair is
// published and replaced as one unit.
type snapshot struct {
	catalog *Catalog
	index   *SearchIndex
}

type queryKey struct {
	catalog  uuid.UUID
	prices   uint64
	criteria string
}

// Engine owns the active catalog snapshot and price table and serves
// memoized queries over them. Loads and price refreshes swap whole tables;
// readers always see a consistent catalog/index pair.
type Engine struct {
	current atomic.Pointer[snapshot]
	prices  atomic.Pointer[models.PriceTable]

	mu         sync.Mutex
	generation uint64

	cache *lru.Cache[queryKey, []models.ViewCard]

	// beforePublish runs after the index is built and before the generation
	// check. Tests use it to interleave loads.
	beforePublish func()
}

// NewEngine creates an engine with an LRU result cache of cacheSize entries
func NewEngine(cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = defaultQueryCacheSize
	}
	cache, err := lru.New[queryKey, []models.ViewCard](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}
	return &Engine{cache: cache}, nil
}

// LoadCatalog validates the payload, builds its search index and publishes
// both. On failure the previous snapshot stays active. If another valid
// load starts before this one finishes, this one returns ErrSuperseded and
// its result is discarded. A rejected payload never supersedes anything.
func (e *Engine) LoadCatalog(p Payload) (*Catalog, error) {
	cat, err := Load(p)
	if err != nil {
		var integrityErr *DataIntegrityError
		if errors.As(err, &integrityErr) {
			metrics.CatalogLoadsTotal.WithLabelValues("integrity_error").Inc()
		}
		log.Printf("Catalog: load rejected, keeping previous snapshot: %v", err)
		return nil, err
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	start := time.Now()
	idx := BuildIndex(cat)
	metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())

	if e.beforePublish != nil {
		e.beforePublish()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		metrics.CatalogLoadsTotal.WithLabelValues("superseded").Inc()
		log.Printf("Catalog: snapshot %s superseded before publish, discarding", cat.ID)
		return nil, ErrSuperseded
	}
	e.current.Store(&snapshot{catalog: cat, index: idx})
	e.cache.Purge()

	metrics.CatalogLoadsTotal.WithLabelValues("success").Inc()
	metrics.CatalogCards.Set(float64(cat.Len()))
	metrics.CatalogSets.Set(float64(cat.Lookups.Sets.Len()))
	log.Printf("Catalog: snapshot %s loaded: %d cards, %d sets, %d indexed words (index built in %v)",
		cat.ID, cat.Len(), cat.Lookups.Sets.Len(), len(idx.vocab), time.Since(start).Round(time.Millisecond))

	return cat, nil
}

// SetPrices publishes a new price table. Cached results keyed on the old
// table version are simply never hit again.
func (e *Engine) SetPrices(t *models.PriceTable) {
	e.prices.Store(t)
	metrics.PriceTableSize.Set(float64(t.Len()))
}

// Ready reports whether a catalog and its search index are loaded
func (e *Engine) Ready() bool {
	s := e.current.Load()
	return s != nil && s.index != nil
}

// Catalog returns the active snapshot, or nil before the first load
func (e *Engine) Catalog() *Catalog {
	if s := e.current.Load(); s != nil {
		return s.catalog
	}
	return nil
}

// Prices returns the active price table, or nil before the first refresh
func (e *Engine) Prices() *models.PriceTable {
	return e.prices.Load()
}

// Query evaluates criteria against the active snapshot. Results are cached
// per (snapshot, price version, criteria). Every caller gets its own copy.
func (e *Engine) Query(cr models.Criteria) ([]models.ViewCard, error) {
	if err := validateCriteria(cr); err != nil {
		recordQueryError(err)
		return nil, err
	}

	s := e.current.Load()
	if s == nil {
		return []models.ViewCard{}, nil
	}
	prices := e.prices.Load()

	var version uint64
	if prices != nil {
		version = prices.Version
	}
	key := queryKey{catalog: s.catalog.ID, prices: version, criteria: cr.Key()}
	if cached, ok := e.cache.Get(key); ok {
		metrics.QueryCacheHits.Inc()
		return cloneViews(cached), nil
	}
	metrics.QueryCacheMisses.Inc()

	start := time.Now()
	result, err := Evaluate(s.catalog, s.index, prices, cr)
	if err != nil {
		recordQueryError(err)
		return nil, err
	}
	metrics.QueryDuration.Observe(time.Since(start).Seconds())

	e.cache.Add(key, result)
	return cloneViews(result), nil
}

// Suggest returns autocomplete entries for query from the active snapshot
func (e *Engine) Suggest(query string, limit int) []models.Suggestion {
	s := e.current.Load()
	if s == nil {
		metrics.SuggestRequestsTotal.WithLabelValues("not_ready").Inc()
		return []models.Suggestion{}
	}
	out := Suggest(s.catalog, s.index, query, limit)
	if len(out) == 0 {
		metrics.SuggestRequestsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.SuggestRequestsTotal.WithLabelValues("hit").Inc()
	}
	return out
}

// Card resolves a single card by id from the active snapshot
func (e *Engine) Card(id string) (*models.ViewCard, bool) {
	s := e.current.Load()
	if s == nil {
		return nil, false
	}
	pos, ok := s.catalog.Position(id)
	if !ok {
		return nil, false
	}
	view := Denormalize(s.catalog, pos, e.prices.Load())
	return &view, true
}

func recordQueryError(err error) {
	var fieldErr *InvalidFilterFieldError
	var sortErr *InvalidSortKeyError
	switch {
	case errors.As(err, &fieldErr):
		metrics.QueryErrorsTotal.WithLabelValues("invalid_filter").Inc()
	case errors.As(err, &sortErr):
		metrics.QueryErrorsTotal.WithLabelValues("invalid_sort").Inc()
	case errors.Is(err, ErrStaleIndexMismatch):
		metrics.QueryErrorsTotal.WithLabelValues("stale_index").Inc()
		log.Printf("ERROR: Catalog: %v", err)
	}
}
