package database

import (
	"fmt"

	"github.com/cadenza-ml/cadenza-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres connection used for operational metadata
// (training-run history). Generation itself never touches the database.
func Connect(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// Migrate applies schema migrations for all persisted models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.TrainingRun{})
}
