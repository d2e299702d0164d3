// models/wallet.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Preferences is free-form listing data a holder attaches to their wallet.
type Preferences struct {
	Activities []string `json:"activities,omitempty"` // interest tags, e.g. "staking", "yield-farming"
	Region     string   `json:"region,omitempty"`
}

// LRTBalances maps a liquid-restaking token symbol (ezeth, rseth, ...) to its balance.
type LRTBalances map[string]decimal.Decimal

// Wallet is a listed holder. Address is the identity; ID is the surrogate key used
// by offers and messages.
// Table name: wallets
type Wallet struct {
	ID      string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Address string `gorm:"type:varchar(128);not null;uniqueIndex" json:"address"` // stored lower-case

	EthBalance    decimal.Decimal                 `gorm:"type:numeric(18,8);not null;default:0" json:"ethBalance"`
	StethBalance  decimal.Decimal                 `gorm:"type:numeric(18,8);not null;default:0" json:"stethBalance"`
	RethBalance   decimal.Decimal                 `gorm:"type:numeric(18,8);not null;default:0" json:"rethBalance"`
	CbethBalance  decimal.Decimal                 `gorm:"type:numeric(18,8);not null;default:0" json:"cbethBalance"`
	LrtBalances   datatypes.JSONType[LRTBalances] `gorm:"not null" json:"lrtBalances"`
	TotalValueUsd decimal.Decimal                 `gorm:"type:numeric(18,2);not null;default:0;index" json:"totalValueUsd"`

	Preferences         datatypes.JSONType[Preferences] `gorm:"not null" json:"preferences"`
	AvailableCapitalMin decimal.Decimal                 `gorm:"type:numeric(18,2);not null;default:0" json:"availableCapitalMin"`
	AvailableCapitalMax decimal.Decimal                 `gorm:"type:numeric(18,2);not null;default:0" json:"availableCapitalMax"`
	EmailAlertsEnabled  bool                            `gorm:"not null;default:false" json:"emailAlertsEnabled"`
	Email               *string                         `json:"email,omitempty"`
	IsVerified          bool                            `gorm:"not null;default:false" json:"isVerified"`
	Badges              datatypes.JSONSlice[string]     `gorm:"not null" json:"badges"`

	LastActive time.Time `gorm:"not null;index" json:"lastActive"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}

// Balances is the set of asset balances refreshed on every connect.
type Balances struct {
	Eth   decimal.Decimal
	Steth decimal.Decimal
	Reth  decimal.Decimal
	Cbeth decimal.Decimal
	Lrt   LRTBalances
}

// Balances extracts the current balances of w.
func (w *Wallet) Balances() Balances {
	return Balances{
		Eth:   w.EthBalance,
		Steth: w.StethBalance,
		Reth:  w.RethBalance,
		Cbeth: w.CbethBalance,
		Lrt:   w.LrtBalances.Data(),
	}
}
