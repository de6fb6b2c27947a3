package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kamilakurskaa/TrustFlow/internal/store/schema"
)

// AutoMigrate creates or updates all tables for the schema models
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&schema.User{},
		&schema.UserProfile{},
		&schema.CreditRequest{},
		&schema.CreditReport{},
		&schema.ParserJob{},
		&schema.UploadedDocument{},
		&schema.BlockchainRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
