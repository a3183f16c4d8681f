package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"walletgw/config"
	"walletgw/models"
)

func Connect(cfg config.Database) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if cfg.AutoMigrate {
		log.Println("Starting auto-migration...")
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("database: migrate: %w", err)
		}
		log.Println("Auto migration completed")
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Player{},
		&models.Transaction{},
		&models.Token{},
	)
}
