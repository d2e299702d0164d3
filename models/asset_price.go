package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetPrice is one row of the reference price table used for valuation.
// Symbol is the lower-case asset key (eth, steth, ezeth, ...).
type AssetPrice struct {
	Symbol    string          `gorm:"primaryKey;type:varchar(32)" json:"symbol"`
	PriceUsd  decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"priceUsd"`
	Source    string          `gorm:"type:varchar(64)" json:"source"`
	UpdatedAt time.Time       `gorm:"not null" json:"updatedAt"`
}
