package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketplaceStatsID is the primary key of the single stats snapshot row.
const MarketplaceStatsID = 1

// MarketplaceStats is a stored snapshot of the aggregate counters. The live values
// are computed from wallets and offers; this row is refreshed by the scheduler.
type MarketplaceStats struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	TotalWallets  int64           `gorm:"not null;default:0" json:"totalWallets"`
	TotalValueUsd decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"totalValueUsd"`
	ActiveOffers  int64           `gorm:"not null;default:0" json:"activeOffers"`
	DealsClosed   int64           `gorm:"not null;default:0" json:"dealsClosed"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updatedAt"`
}
