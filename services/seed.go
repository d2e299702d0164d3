// services/seed.go
package services

import (
	"context"
	"fmt"
	"time"

	"liquidity-marketplace/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type seedWallet struct {
	address    string
	eth        string
	steth      string
	reth       string
	cbeth      string
	ezeth      string
	rseth      string
	total      string
	activities []string
	capMin     int64
	capMax     int64
	alerts     bool
	verified   bool
	badges     []string
}

var seedWallets = []seedWallet{
	{"0x1234567890abcdef1234567890abcdef12345678", "25.5", "12.3", "8.7", "5.2", "3.4", "2.1", "108643.50",
		[]string{"staking", "lending"}, 5000, 50000, true, true, []string{"top-holder"}},
	{"0xabcdef1234567890abcdef1234567890abcdef12", "45.2", "23.1", "15.6", "8.9", "6.7", "4.3", "196874.20",
		[]string{"defi", "yield-farming"}, 10000, 100000, false, true, []string{"verified", "whale"}},
	{"0x9876543210fedcba9876543210fedcba98765432", "12.8", "6.4", "3.2", "1.8", "1.2", "0.8", "51203.60",
		[]string{"nft", "gaming"}, 2000, 25000, false, false, []string{}},
}

type seedOffer struct {
	walletIndex int
	tag         string
	title       string
	description string
	offerType   models.OfferType
	reward      int64
	contact     string
}

var seedOffers = []seedOffer{
	{0, "Protocol Alpha", "Stake 10 ETH for 30 days - Get $500 bonus",
		"Stake your ETH with our protocol for 30 days and receive a $500 bonus on top of staking rewards.",
		models.OfferTypeCash, 500, "alpha@protocol.com"},
	{1, "Yield Farm Beta", "Provide LP tokens - Earn 15% APY",
		"Provide liquidity to our ETH/stETH pool and earn 15% APY plus governance tokens.",
		models.OfferTypeTokens, 1200, "beta@yieldfarm.com"},
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// SeedSampleData inserts the demo wallets, offers and stats snapshot when the
// wallets table is empty. It reports whether anything was written.
func SeedSampleData(ctx context.Context, db *gorm.DB, log *zap.Logger) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Wallet{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count wallets: %w", err)
	}
	if count > 0 {
		log.Info("seed skipped, wallets already present", zap.Int64("wallets", count))
		return false, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		ids := make([]string, len(seedWallets))
		total := decimal.Zero

		for i, sw := range seedWallets {
			w := models.Wallet{
				ID:           uuid.NewString(),
				Address:      sw.address,
				EthBalance:   mustDecimal(sw.eth),
				StethBalance: mustDecimal(sw.steth),
				RethBalance:  mustDecimal(sw.reth),
				CbethBalance: mustDecimal(sw.cbeth),
				LrtBalances: datatypes.NewJSONType(models.LRTBalances{
					"ezeth": mustDecimal(sw.ezeth),
					"rseth": mustDecimal(sw.rseth),
				}),
				TotalValueUsd:       mustDecimal(sw.total),
				Preferences:         datatypes.NewJSONType(models.Preferences{Activities: sw.activities}),
				AvailableCapitalMin: decimal.NewFromInt(sw.capMin),
				AvailableCapitalMax: decimal.NewFromInt(sw.capMax),
				EmailAlertsEnabled:  sw.alerts,
				IsVerified:          sw.verified,
				Badges:              datatypes.NewJSONSlice(sw.badges),
				LastActive:          now,
				CreatedAt:           now,
				UpdatedAt:           now,
			}
			if err := tx.Create(&w).Error; err != nil {
				return fmt.Errorf("seed wallet %s: %w", sw.address, err)
			}
			ids[i] = w.ID
			total = total.Add(w.TotalValueUsd)
		}

		for i, so := range seedOffers {
			tag, contact := so.tag, so.contact
			reward := decimal.NewFromInt(so.reward)
			created := now.Add(time.Duration(i) * time.Second)
			o := models.Offer{
				ID:               uuid.NewString(),
				TargetWalletID:   ids[so.walletIndex],
				FromAnonymousTag: &tag,
				Title:            so.title,
				Description:      so.description,
				OfferType:        so.offerType,
				Category:         models.OfferCategoryDefi,
				RewardValue:      &reward,
				IsActive:         true,
				ContactInfo:      &contact,
				CreatedAt:        created,
				UpdatedAt:        created,
			}
			if err := tx.Create(&o).Error; err != nil {
				return fmt.Errorf("seed offer %q: %w", so.title, err)
			}
		}

		snap := models.MarketplaceStats{
			ID:            models.MarketplaceStatsID,
			TotalWallets:  int64(len(seedWallets)),
			TotalValueUsd: total,
			ActiveOffers:  int64(len(seedOffers)),
			DealsClosed:   0,
			UpdatedAt:     now,
		}
		return tx.Save(&snap).Error
	})
	if err != nil {
		return false, err
	}

	log.Info("sample data seeded",
		zap.Int("wallets", len(seedWallets)),
		zap.Int("offers", len(seedOffers)))
	return true, nil
}
