package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/codyseavey/tcg-catalog/internal/metrics"
	"github.com/codyseavey/tcg-catalog/internal/models"
)

const defaultRefreshInterval = 15 * time.Minute

// PriceSink receives each freshly loaded price table
type PriceSink interface {
	SetPrices(t *models.PriceTable)
}

// PriceWorker periodically reloads the persisted prices into the catalog
// engine. Requested refreshes are coalesced: any number of requests made
// while one is pending result in a single reload.
type PriceWorker struct {
	priceService   *PriceService
	sink           PriceSink
	updateInterval time.Duration
	refresh        chan struct{}

	mu sync.RWMutex

	// Stats (reset at midnight)
	refreshesToday int
	lastStatsDay   time.Time
	lastUpdateTime time.Time
	lastError      string
	tableVersion   uint64
	pricedCards    int
	stalePrices    int
}

type PriceStatus struct {
	LastUpdateTime time.Time `json:"last_update_time"`
	NextUpdateTime time.Time `json:"next_update_time"`
	RefreshesToday int       `json:"refreshes_today"`
	TableVersion   uint64    `json:"table_version"`
	PricedCards    int       `json:"priced_cards"`
	StalePrices    int       `json:"stale_prices"`
	RefreshPending bool      `json:"refresh_pending"`
	LastError      string    `json:"last_error,omitempty"`
}

func NewPriceWorker(priceService *PriceService, sink PriceSink, interval time.Duration) *PriceWorker {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &PriceWorker{
		priceService:   priceService,
		sink:           sink,
		updateInterval: interval,
		refresh:        make(chan struct{}, 1),
	}
}

// RequestRefresh asks the running worker to reload prices soon. It returns
// false when a refresh is already pending.
func (w *PriceWorker) RequestRefresh() bool {
	select {
	case w.refresh <- struct{}{}:
		log.Println("Price worker: refresh requested")
		return true
	default:
		return false
	}
}

// resetDailyStatsIfNeeded resets refreshesToday at midnight
func (w *PriceWorker) resetDailyStatsIfNeeded() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if w.lastStatsDay.Before(today) {
		if !w.lastStatsDay.IsZero() {
			log.Printf("Price worker: daily stats reset (previous day: %d refreshes)", w.refreshesToday)
		}
		w.refreshesToday = 0
		w.lastStatsDay = today
	}
}

// Start runs the refresh loop until ctx is cancelled
func (w *PriceWorker) Start(ctx context.Context) {
	log.Printf("Price worker started: will reload prices every %v", w.updateInterval)

	// Run immediately on startup
	if n, err := w.Refresh(); err != nil {
		log.Printf("Price worker: initial refresh failed: %v", err)
	} else {
		log.Printf("Price worker: initial refresh loaded prices for %d cards", n)
	}

	ticker := time.NewTicker(w.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Price worker stopping...")
			return
		case <-ticker.C:
			if _, err := w.Refresh(); err != nil {
				log.Printf("Price worker: refresh failed: %v", err)
			}
		case <-w.refresh:
			if _, err := w.Refresh(); err != nil {
				log.Printf("Price worker: requested refresh failed: %v", err)
			}
		}
	}
}

// Refresh loads the price table and publishes it to the sink. On failure
// the previously published table stays active.
func (w *PriceWorker) Refresh() (int, error) {
	w.resetDailyStatsIfNeeded()
	start := time.Now()

	table, stale, err := w.priceService.LoadTable()
	if err != nil {
		metrics.PriceRefreshesTotal.WithLabelValues("failed").Inc()
		w.mu.Lock()
		w.lastError = err.Error()
		w.mu.Unlock()
		return 0, err
	}

	w.sink.SetPrices(table)

	metrics.PriceRefreshesTotal.WithLabelValues("success").Inc()
	metrics.PriceRefreshDuration.Observe(time.Since(start).Seconds())

	w.mu.Lock()
	w.refreshesToday++
	w.lastUpdateTime = time.Now()
	w.lastError = ""
	w.tableVersion = table.Version
	w.pricedCards = table.Len()
	w.stalePrices = stale
	w.mu.Unlock()

	if stale > 0 {
		log.Printf("Price worker: %d of the loaded prices are older than %v", stale, PriceStalenessThreshold)
	}
	return table.Len(), nil
}

// GetStatus returns the current worker status
func (w *PriceWorker) GetStatus() PriceStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	status := PriceStatus{
		LastUpdateTime: w.lastUpdateTime,
		RefreshesToday: w.refreshesToday,
		TableVersion:   w.tableVersion,
		PricedCards:    w.pricedCards,
		StalePrices:    w.stalePrices,
		RefreshPending: len(w.refresh) > 0,
		LastError:      w.lastError,
	}
	if !w.lastUpdateTime.IsZero() {
		status.NextUpdateTime = w.lastUpdateTime.Add(w.updateInterval)
	}
	return status
}
