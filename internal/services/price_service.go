package services

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

const (
	// PriceStalenessThreshold is how old a price can be before it's considered stale
	PriceStalenessThreshold = 24 * time.Hour
)

// PriceService reads and writes the persisted card_prices table and turns it
// into the in-memory PriceTable the catalog engine sorts and decorates with.
type PriceService struct {
	db      *gorm.DB
	version atomic.Uint64
}

// NewPriceService creates a new price service
func NewPriceService(db *gorm.DB) *PriceService {
	return &PriceService{db: db}
}

// LoadTable reads every English price row into a fresh PriceTable. Each call
// gets a new Version so cached query results priced by an older table are
// never reused.
func (s *PriceService) LoadTable() (*models.PriceTable, int, error) {
	var rows []models.CardPrice
	err := s.db.Where("language = ?", models.LanguageEnglish).
		Order("card_id, id").
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load prices: %w", err)
	}

	table := &models.PriceTable{
		Version:  s.version.Add(1),
		Entries:  make(map[string]models.PriceEntry),
		LoadedAt: time.Now(),
	}
	stale := 0
	for _, row := range rows {
		entry := table.Entries[row.CardID]
		entry.CardID = row.CardID
		entry.Points = append(entry.Points, models.PricePoint{
			Condition: row.Condition,
			Printing:  row.Printing,
			PriceUSD:  row.PriceUSD,
		})
		if row.PriceUpdatedAt != nil && (entry.UpdatedAt == nil || row.PriceUpdatedAt.After(*entry.UpdatedAt)) {
			entry.UpdatedAt = row.PriceUpdatedAt
		}
		if !s.isFresh(row.PriceUpdatedAt) {
			stale++
		}
		table.Entries[row.CardID] = entry
	}

	return table, stale, nil
}

// SaveCardPrices saves prices for one card (upsert)
func (s *PriceService) SaveCardPrices(cardID string, prices []models.CardPrice) error {
	if len(prices) == 0 {
		return nil
	}

	for i := range prices {
		prices[i].CardID = cardID
	}
	return s.SavePrices(prices)
}

// SavePrices bulk upserts rows on the unique (card_id, condition, printing, language) index
func (s *PriceService) SavePrices(prices []models.CardPrice) error {
	if len(prices) == 0 {
		return nil
	}

	now := time.Now()
	for i := range prices {
		if prices[i].Printing == "" {
			prices[i].Printing = models.PrintingNormal
		}
		prices[i].Language = models.NormalizeLanguage(string(prices[i].Language))
		if prices[i].PriceUpdatedAt == nil {
			prices[i].PriceUpdatedAt = &now
		}
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "card_id"}, {Name: "condition"}, {Name: "printing"}, {Name: "language"}},
		DoUpdates: clause.AssignmentColumns([]string{"price_usd", "source", "price_updated_at", "updated_at"}),
	}).Create(&prices).Error
	if err != nil {
		log.Printf("Failed to save %d prices: %v", len(prices), err)
		return fmt.Errorf("failed to save prices: %w", err)
	}
	return nil
}

// ValidatePrice checks a row before it is stored
func ValidatePrice(p models.CardPrice) error {
	if p.CardID == "" {
		return fmt.Errorf("card_id is required")
	}
	if p.PriceUSD < 0 {
		return fmt.Errorf("price_usd must not be negative (card %s)", p.CardID)
	}
	if !validCondition(p.Condition) {
		return fmt.Errorf("unknown condition %q (card %s)", p.Condition, p.CardID)
	}
	if p.Printing != "" && !validPrinting(p.Printing) {
		return fmt.Errorf("unknown printing %q (card %s)", p.Printing, p.CardID)
	}
	return nil
}

func validCondition(c models.PriceCondition) bool {
	for _, known := range models.AllPriceConditions() {
		if c == known {
			return true
		}
	}
	return false
}

func validPrinting(p models.PrintingType) bool {
	for _, known := range models.AllPrintingTypes() {
		if p == known {
			return true
		}
	}
	return false
}

// isFresh checks if a price update time is within the staleness threshold
func (s *PriceService) isFresh(updatedAt *time.Time) bool {
	if updatedAt == nil {
		return false
	}
	return time.Since(*updatedAt) < PriceStalenessThreshold
}
