package db

import (
	"fmt"
	"log"

	"cf_bridge/internal/model"

	"gorm.io/gorm"
)

// Migrate runs database migrations for all models
func Migrate(db *gorm.DB) error {
	log.Println("Starting database migration...")

	// List of all models to migrate
	models := []interface{}{
		&model.User{},
		&model.Credential{},
		&model.PluginSettings{},
		&model.DNSRecord{},
		&model.PurgeEvent{},
		&model.SecurityEvent{},
		&model.FirewallRule{},
		&model.IPAccessRule{},
		&model.PageRule{},
		&model.Certificate{},
		&model.Worker{},
		&model.WorkerRoute{},
		&model.KVNamespace{},
		&model.R2Bucket{},
		&model.AnalyticsSnapshot{},
		&model.NotifyEvent{},
	}

	// Run AutoMigrate for all models
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("✓ Database migration completed successfully (%d tables)", len(models))
	return nil
}
