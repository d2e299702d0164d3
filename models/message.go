package models

import "time"

// Message belongs to exactly one offer and is removed with it.
type Message struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OfferID      string  `gorm:"type:varchar(36);not null;index" json:"offerId"`
	Offer        *Offer  `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"-"`
	FromWalletID *string `gorm:"type:varchar(36)" json:"fromWalletId,omitempty"`
	FromWallet   *Wallet `gorm:"foreignKey:FromWalletID;constraint:OnDelete:CASCADE" json:"-"`
	ToWalletID   *string `gorm:"type:varchar(36)" json:"toWalletId,omitempty"`
	ToWallet     *Wallet `gorm:"foreignKey:ToWalletID;constraint:OnDelete:CASCADE" json:"-"`

	Content   string    `gorm:"type:text;not null" json:"content"`
	IsRead    bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}
