// services/stats_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"liquidity-marketplace/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ActivityLimit caps the activity feed.
const ActivityLimit = 10

const (
	ActivityTypeOffer = "offer"
	ActivityTypeDeal  = "deal"
)

type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// Stats are the marketplace counters as derived from the current rows.
type Stats struct {
	TotalWallets  int64           `json:"totalWallets"`
	TotalValueUsd decimal.Decimal `json:"totalValueUsd"`
	ActiveOffers  int64           `json:"activeOffers"`
	DealsClosed   int64           `json:"dealsClosed"`
}

type ActivityItem struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Timestamp     time.Time `json:"timestamp"`
	WalletAddress string    `json:"walletAddress"`
}

// GetStats computes the counters from wallets and offers.
func (s *StatsService) GetStats(ctx context.Context) (*Stats, error) {
	db := s.DB.WithContext(ctx)
	var st Stats

	if err := db.Model(&models.Wallet{}).Count(&st.TotalWallets).Error; err != nil {
		return nil, fmt.Errorf("count wallets: %w", err)
	}
	if err := db.Model(&models.Wallet{}).
		Select("COALESCE(SUM(total_value_usd), 0)").
		Row().Scan(&st.TotalValueUsd); err != nil {
		return nil, fmt.Errorf("sum wallet value: %w", err)
	}
	st.TotalValueUsd = st.TotalValueUsd.Round(2)

	if err := db.Model(&models.Offer{}).
		Where("is_active = ? AND is_accepted = ?", true, false).
		Count(&st.ActiveOffers).Error; err != nil {
		return nil, fmt.Errorf("count active offers: %w", err)
	}
	if err := db.Model(&models.Offer{}).
		Where("is_accepted = ?", true).
		Count(&st.DealsClosed).Error; err != nil {
		return nil, fmt.Errorf("count closed deals: %w", err)
	}
	return &st, nil
}

// GetSnapshot returns the stored stats row, creating it with zeros when absent.
func (s *StatsService) GetSnapshot(ctx context.Context) (*models.MarketplaceStats, error) {
	snap := models.MarketplaceStats{ID: models.MarketplaceStatsID}
	if err := s.DB.WithContext(ctx).
		Where(models.MarketplaceStats{ID: models.MarketplaceStatsID}).
		Attrs(models.MarketplaceStats{TotalValueUsd: decimal.Zero, UpdatedAt: time.Now().UTC()}).
		FirstOrCreate(&snap).Error; err != nil {
		return nil, fmt.Errorf("load stats snapshot: %w", err)
	}
	return &snap, nil
}

// RefreshSnapshot writes the live counters into the stored row.
func (s *StatsService) RefreshSnapshot(ctx context.Context) (*models.MarketplaceStats, error) {
	st, err := s.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	snap := &models.MarketplaceStats{
		ID:            models.MarketplaceStatsID,
		TotalWallets:  st.TotalWallets,
		TotalValueUsd: st.TotalValueUsd,
		ActiveOffers:  st.ActiveOffers,
		DealsClosed:   st.DealsClosed,
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Save(snap).Error; err != nil {
		return nil, fmt.Errorf("save stats snapshot: %w", err)
	}
	return snap, nil
}

type activityRow struct {
	ID         string
	Title      string
	CreatedAt  time.Time
	AcceptedAt *time.Time
	Address    string
}

func (s *StatsService) activityRows(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]activityRow, error) {
	var rows []activityRow
	err := s.DB.WithContext(ctx).
		Table("offers").
		Select("offers.id, offers.title, offers.created_at, offers.accepted_at, wallets.address").
		Joins("JOIN wallets ON wallets.id = offers.target_wallet_id").
		Scopes(scope).
		Limit(ActivityLimit).
		Scan(&rows).Error
	return rows, err
}

// RecentActivity merges the newest offers and the newest acceptances into one
// feed, newest first.
func (s *StatsService) RecentActivity(ctx context.Context) ([]ActivityItem, error) {
	created, err := s.activityRows(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Order("offers.created_at DESC").Order("offers.id ASC")
	})
	if err != nil {
		return nil, fmt.Errorf("recent offers: %w", err)
	}
	accepted, err := s.activityRows(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("offers.is_accepted = ? AND offers.accepted_at IS NOT NULL", true).
			Order("offers.accepted_at DESC").Order("offers.id ASC")
	})
	if err != nil {
		return nil, fmt.Errorf("recent deals: %w", err)
	}

	items := make([]ActivityItem, 0, len(created)+len(accepted))
	for _, r := range created {
		items = append(items, ActivityItem{
			ID:            r.ID,
			Type:          ActivityTypeOffer,
			Description:   "New offer: " + r.Title,
			Timestamp:     r.CreatedAt.UTC(),
			WalletAddress: r.Address,
		})
	}
	for _, r := range accepted {
		items = append(items, ActivityItem{
			ID:            r.ID,
			Type:          ActivityTypeDeal,
			Description:   "Offer accepted: " + r.Title,
			Timestamp:     r.AcceptedAt.UTC(),
			WalletAddress: r.Address,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if len(items) > ActivityLimit {
		items = items[:ActivityLimit]
	}
	return items, nil
}
