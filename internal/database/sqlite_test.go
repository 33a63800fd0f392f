package database

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "prices.db"), logger.Discard)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if !db.Migrator().HasTable(&models.CardPrice{}) {
		t.Fatal("card_prices table was not created")
	}
	if !db.Migrator().HasIndex(&models.CardPrice{}, "idx_card_cond_print_lang") {
		t.Error("unique price index was not created")
	}
}

func TestOpenRemovesDuplicatePrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	stmts := []string{
		`CREATE TABLE card_prices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			card_id TEXT NOT NULL,
			condition TEXT NOT NULL,
			printing TEXT,
			language TEXT,
			price_usd REAL,
			source TEXT,
			price_updated_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`INSERT INTO card_prices (card_id, condition, printing, language, price_usd) VALUES ('base1-4', 'NM', '', '', 250)`,
		`INSERT INTO card_prices (card_id, condition, printing, language, price_usd) VALUES ('base1-4', 'NM', 'Normal', 'English', 310)`,
		`INSERT INTO card_prices (card_id, condition, printing, language, price_usd) VALUES ('base1-58', 'NM', 'Normal', 'English', 2)`,
	}
	for _, s := range stmts {
		if err := legacy.Exec(s).Error; err != nil {
			t.Fatalf("seed legacy db: %v", err)
		}
	}
	sqlDB, _ := legacy.DB()
	sqlDB.Close()

	db, err := Open(path, logger.Discard)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	var rows []models.CardPrice
	if err := db.Order("card_id").Find(&rows).Error; err != nil {
		t.Fatalf("query prices: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 after dedupe", len(rows))
	}
	if rows[0].CardID != "base1-4" || rows[0].PriceUSD != 310 {
		t.Errorf("kept row = %+v, want the newest base1-4 price 310", rows[0])
	}
	if rows[0].Printing != models.PrintingNormal || rows[0].Language != models.LanguageEnglish {
		t.Errorf("defaults not applied: printing %q, language %q", rows[0].Printing, rows[0].Language)
	}
}
