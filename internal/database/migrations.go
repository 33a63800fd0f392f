package database

import (
	"log"

	"gorm.io/gorm"
)

// cleanupDuplicateCardPrices removes duplicate card_prices rows so the unique
// index on (card_id, condition, printing, language) can be created
func cleanupDuplicateCardPrices(db *gorm.DB) error {
	if !db.Migrator().HasTable("card_prices") {
		return nil
	}

	groupBy := "card_id, condition, printing"
	if db.Migrator().HasColumn("card_prices", "language") {
		groupBy = "card_id, condition, printing, language"
	}

	normalizeDefaults(db)

	// Keep the newest row of each group
	result := db.Exec(`
		DELETE FROM card_prices
		WHERE id NOT IN (
			SELECT MAX(id)
			FROM card_prices
			GROUP BY ` + groupBy + `
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d duplicate card_prices entries", result.RowsAffected)
	}

	return nil
}

// RunMigrations runs data fixups after schema changes. Safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	normalizeDefaults(db)

	// AutoMigrate will not drop the old index that did not include language
	if db.Migrator().HasIndex("card_prices", "idx_card_cond_print") {
		if err := db.Migrator().DropIndex("card_prices", "idx_card_cond_print"); err != nil {
			log.Printf("Warning: failed to drop legacy card_prices index idx_card_cond_print: %v", err)
		}
	}
	return nil
}

// normalizeDefaults fills empty printing and language values left by older rows
func normalizeDefaults(db *gorm.DB) {
	if db.Migrator().HasColumn("card_prices", "printing") {
		if err := db.Exec(`UPDATE card_prices SET printing = 'Normal' WHERE printing IS NULL OR printing = ''`).Error; err != nil {
			log.Printf("Warning: failed to normalize printing values: %v", err)
		}
	}
	if db.Migrator().HasColumn("card_prices", "language") {
		if err := db.Exec(`UPDATE card_prices SET language = 'English' WHERE language IS NULL OR language = ''`).Error; err != nil {
			log.Printf("Warning: failed to normalize language values: %v", err)
		}
	}
}
