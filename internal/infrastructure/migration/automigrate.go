package migration

import (
	"gorm.io/gorm"

	"rubybot/internal/infrastructure/persistence/models"
)

// AutoMigrate creates or updates the schema for every persisted model. It is
// idempotent and runs on every process start.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.TicketModel{},
		&models.TicketSettingsModel{},
		&models.WelcomeSettingsModel{},
	)
}
