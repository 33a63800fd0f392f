package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

var DB *gorm.DB

// Initialize opens the price database and migrates its schema
func Initialize(dbPath string) error {
	db, err := Open(dbPath, logger.Default.LogMode(logger.Warn))
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to a sqlite database and brings the card_prices schema up to
// date. Use ":memory:" for a throwaway database.
func Open(dbPath string, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	log.Println("Database connected successfully")

	// Duplicates must go before AutoMigrate adds the unique index
	if err := cleanupDuplicateCardPrices(db); err != nil {
		return nil, fmt.Errorf("failed to clean up duplicate prices: %w", err)
	}

	if err := db.AutoMigrate(&models.CardPrice{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migration completed")
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}
