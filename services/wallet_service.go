// services/wallet_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"liquidity-marketplace/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Sort keys accepted by ListWallets.
const (
	SortByTotalValue  = "totalValueUsd"
	SortByLastActive  = "lastActive"
	SortByOffersCount = "offersCount"
)

// assetFilters maps an asset-type filter value to the predicate it applies.
var assetFilters = map[string]string{
	"eth":   "eth_balance > 0",
	"steth": "steth_balance > 0",
	"reth":  "reth_balance > 0",
	"cbeth": "cbeth_balance > 0",
	"lrts":  "CAST(lrt_balances AS TEXT) NOT IN ('{}', 'null', '')",
}

// assetBalanceColumns are refreshed on every reconnect; profile fields are only
// written on first insert.
var assetBalanceColumns = []string{
	"eth_balance",
	"steth_balance",
	"reth_balance",
	"cbeth_balance",
	"lrt_balances",
	"total_value_usd",
	"last_active",
	"updated_at",
}

type WalletService struct {
	DB     *gorm.DB
	Prices *PriceService
}

func NewWalletService(db *gorm.DB, prices *PriceService) *WalletService {
	return &WalletService{DB: db, Prices: prices}
}

// WalletQuery describes one page of the wallet listing.
type WalletQuery struct {
	Page      int
	Limit     int
	Search    string
	MinEth    decimal.Decimal
	AssetType string
	SortBy    string
	SortOrder string
}

// WalletPage is a page of wallets plus the total number of matches.
type WalletPage struct {
	Wallets []models.Wallet
	Page    int
	Limit   int
	Total   int64
	Pages   int
}

// ConnectWalletInput carries everything the client knows about a wallet at
// connect time. A nil TotalValueUsd is computed from the reference prices.
type ConnectWalletInput struct {
	Address             string
	Balances            models.Balances
	TotalValueUsd       *decimal.Decimal
	Preferences         models.Preferences
	AvailableCapitalMin decimal.Decimal
	AvailableCapitalMax decimal.Decimal
	EmailAlertsEnabled  bool
	Email               *string
	IsVerified          bool
	Badges              []string
}

func (q *WalletQuery) normalize() error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Page > math.MaxInt/q.Limit {
		return fmt.Errorf("%w: page %d out of range", ErrInvalidQuery, q.Page)
	}
	if q.MinEth.IsNegative() {
		q.MinEth = decimal.Zero
	}
	q.Search = strings.TrimSpace(q.Search)
	q.AssetType = strings.ToLower(strings.TrimSpace(q.AssetType))
	if q.AssetType == "all" {
		q.AssetType = ""
	}
	if _, ok := assetFilters[q.AssetType]; q.AssetType != "" && !ok {
		return fmt.Errorf("%w: unknown asset type %q", ErrInvalidQuery, q.AssetType)
	}
	return nil
}

// filters applies the search, balance and asset predicates shared by the page
// query and the count query.
func (q WalletQuery) filters(db *gorm.DB) *gorm.DB {
	if q.Search != "" {
		term := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		db = db.Where(
			`(LOWER(address) LIKE ? ESCAPE '\' OR LOWER(CAST(preferences AS TEXT)) LIKE ? ESCAPE '\')`,
			term, term,
		)
	}
	if q.MinEth.IsPositive() {
		db = db.Where("eth_balance >= ?", q.MinEth)
	}
	if pred, ok := assetFilters[q.AssetType]; ok {
		db = db.Where(pred)
	}
	return db
}

func (q WalletQuery) order(db *gorm.DB) *gorm.DB {
	switch q.SortBy {
	case SortByTotalValue:
		if strings.EqualFold(q.SortOrder, "asc") {
			db = db.Order("total_value_usd ASC")
		} else {
			db = db.Order("total_value_usd DESC")
		}
	case SortByLastActive:
		db = db.Order("last_active DESC")
	case SortByOffersCount:
		db = db.Order("(SELECT COUNT(*) FROM offers WHERE offers.target_wallet_id = wallets.id) DESC")
	default:
		db = db.Order("created_at DESC")
	}
	return db.Order("id ASC")
}

// ListWallets returns one filtered, sorted page of wallets and the total count
// of wallets matching the same filters.
func (s *WalletService) ListWallets(ctx context.Context, q WalletQuery) (*WalletPage, error) {
	if err := q.normalize(); err != nil {
		return nil, err
	}

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Wallet{}).Scopes(q.filters).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count wallets: %w", err)
	}

	wallets := make([]models.Wallet, 0, q.Limit)
	if err := s.DB.WithContext(ctx).
		Model(&models.Wallet{}).
		Scopes(q.filters, q.order).
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}

	pages := 0
	if total > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}

	return &WalletPage{
		Wallets: wallets,
		Page:    q.Page,
		Limit:   q.Limit,
		Total:   total,
		Pages:   pages,
	}, nil
}

// GetWalletByAddress looks a wallet up by its unique address.
func (s *WalletService) GetWalletByAddress(ctx context.Context, address string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.DB.WithContext(ctx).Where("address = ?", NormalizeAddress(address)).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("wallet %s: %w", address, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet by address: %w", err)
	}
	return &wallet, nil
}

func (s *WalletService) GetWalletByID(ctx context.Context, id string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.DB.WithContext(ctx).First(&wallet, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("wallet %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return &wallet, nil
}

// ConnectWallet inserts the wallet on first sight or refreshes its balances,
// valuation and last-active time. The upsert is a single statement keyed on the
// address, so concurrent first connects for one address end with one row.
func (s *WalletService) ConnectWallet(ctx context.Context, in ConnectWalletInput) (*models.Wallet, error) {
	address := NormalizeAddress(in.Address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidQuery)
	}

	total, err := s.valuation(ctx, in.Balances, in.TotalValueUsd)
	if err != nil {
		return nil, err
	}

	badges := in.Badges
	if badges == nil {
		badges = []string{}
	}
	lrt := in.Balances.Lrt
	if lrt == nil {
		lrt = models.LRTBalances{}
	}

	now := time.Now().UTC()
	wallet := models.Wallet{
		ID:                  uuid.NewString(),
		Address:             address,
		EthBalance:          in.Balances.Eth,
		StethBalance:        in.Balances.Steth,
		RethBalance:         in.Balances.Reth,
		CbethBalance:        in.Balances.Cbeth,
		LrtBalances:         datatypes.NewJSONType(lrt),
		TotalValueUsd:       total,
		Preferences:         datatypes.NewJSONType(NormalizePreferences(in.Preferences)),
		AvailableCapitalMin: in.AvailableCapitalMin,
		AvailableCapitalMax: in.AvailableCapitalMax,
		EmailAlertsEnabled:  in.EmailAlertsEnabled,
		Email:               in.Email,
		IsVerified:          in.IsVerified,
		Badges:              datatypes.NewJSONSlice(badges),
		LastActive:          now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns(assetBalanceColumns),
	}).Create(&wallet).Error; err != nil {
		return nil, fmt.Errorf("upsert wallet %s: %w", address, err)
	}

	return s.GetWalletByAddress(ctx, address)
}

// UpdateWalletAssets refreshes balances and valuation of an existing wallet and
// marks it active now.
func (s *WalletService) UpdateWalletAssets(ctx context.Context, id string, b models.Balances, totalValueUsd *decimal.Decimal) (*models.Wallet, error) {
	total, err := s.valuation(ctx, b, totalValueUsd)
	if err != nil {
		return nil, err
	}
	if b.Lrt == nil {
		b.Lrt = models.LRTBalances{}
	}

	now := time.Now().UTC()
	res := s.DB.WithContext(ctx).Model(&models.Wallet{}).Where("id = ?", id).Updates(map[string]interface{}{
		"eth_balance":     b.Eth,
		"steth_balance":   b.Steth,
		"reth_balance":    b.Reth,
		"cbeth_balance":   b.Cbeth,
		"lrt_balances":    datatypes.NewJSONType(b.Lrt),
		"total_value_usd": total,
		"last_active":     now,
		"updated_at":      now,
	})
	if res.Error != nil {
		return nil, fmt.Errorf("update wallet assets: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("wallet %s: %w", id, ErrNotFound)
	}
	return s.GetWalletByID(ctx, id)
}

// TopWallets returns the highest-valued wallets, used for leaderboard snapshots.
func (s *WalletService) TopWallets(ctx context.Context, limit int) ([]models.Wallet, error) {
	wallets := make([]models.Wallet, 0, limit)
	if err := s.DB.WithContext(ctx).
		Order("total_value_usd DESC").
		Order("id ASC").
		Limit(limit).
		Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("top wallets: %w", err)
	}
	return wallets, nil
}

func (s *WalletService) valuation(ctx context.Context, b models.Balances, supplied *decimal.Decimal) (decimal.Decimal, error) {
	if supplied != nil {
		return supplied.Round(2), nil
	}
	if s.Prices == nil {
		return TotalValueUSD(b, DefaultPrices()), nil
	}
	total, _, err := s.Prices.Value(ctx, b)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
