package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferType indicates what the counterparty is paying with
type OfferType string

const (
	OfferTypeCash   OfferType = "cash"
	OfferTypeTokens OfferType = "tokens"
	OfferTypeNFT    OfferType = "nft"
	OfferTypeIRL    OfferType = "irl"
	OfferTypeOther  OfferType = "other"
)

type OfferCategory string

const (
	OfferCategoryDefi  OfferCategory = "defi"
	OfferCategoryNFT   OfferCategory = "nft"
	OfferCategoryIRL   OfferCategory = "irl"
	OfferCategoryOther OfferCategory = "other"
)

// Offer is an incentive proposal addressed to a listed wallet.
// Deleting the target (or source) wallet cascades to its offers.
type Offer struct {
	ID               string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TargetWalletID   string  `gorm:"type:varchar(36);not null;index" json:"targetWalletId"`
	TargetWallet     *Wallet `gorm:"foreignKey:TargetWalletID;constraint:OnDelete:CASCADE" json:"-"`
	FromWalletID     *string `gorm:"type:varchar(36);index" json:"fromWalletId,omitempty"`
	FromWallet       *Wallet `gorm:"foreignKey:FromWalletID;constraint:OnDelete:CASCADE" json:"-"`
	FromAnonymousTag *string `json:"fromAnonymousTag,omitempty"`

	Title       string           `gorm:"not null" json:"title"`
	Description string           `gorm:"not null" json:"description"`
	OfferType   OfferType        `gorm:"type:varchar(16);not null" json:"offerType"`
	Category    OfferCategory    `gorm:"type:varchar(16);not null;default:'defi'" json:"category"`
	RewardValue *decimal.Decimal `gorm:"type:numeric(18,2)" json:"rewardValue,omitempty"`
	ExpiryDate  *time.Time       `json:"expiryDate,omitempty"`

	IsActive   bool       `gorm:"not null;default:true;index" json:"isActive"`
	IsAccepted bool       `gorm:"not null;default:false;index" json:"isAccepted"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`

	ContactInfo *string `json:"contactInfo,omitempty"`
	TermsLink   *string `json:"termsLink,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// Expired reports whether the offer has an expiry at or before now.
func (o *Offer) Expired(now time.Time) bool {
	return o.ExpiryDate != nil && !o.ExpiryDate.After(now)
}
