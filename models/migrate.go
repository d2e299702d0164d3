package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table of the marketplace schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Wallet{},
		&Offer{},
		&Message{},
		&MarketplaceStats{},
		&AssetPrice{},
	)
}
