package services

import (
	"context"
	"testing"
	"time"

	"liquidity-marketplace/models"
	"liquidity-marketplace/utils"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(utils.SQLiteDSN("")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type testEnv struct {
	db       *gorm.DB
	prices   *PriceService
	wallets  *WalletService
	offers   *OfferService
	messages *MessageService
	stats    *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	prices := NewPriceService(db)
	wallets := NewWalletService(db, prices)
	offers := NewOfferService(db, wallets)
	return &testEnv{
		db:       db,
		prices:   prices,
		wallets:  wallets,
		offers:   offers,
		messages: NewMessageService(db, offers, wallets),
		stats:    NewStatsService(db),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func (e *testEnv) connect(t *testing.T, address, eth, total string) *models.Wallet {
	t.Helper()
	w, err := e.wallets.ConnectWallet(context.Background(), ConnectWalletInput{
		Address:       address,
		Balances:      models.Balances{Eth: dec(eth)},
		TotalValueUsd: decPtr(total),
	})
	if err != nil {
		t.Fatalf("connect %s: %v", address, err)
	}
	return w
}

func (e *testEnv) offer(t *testing.T, target *models.Wallet, title string) *models.Offer {
	t.Helper()
	o, err := e.offers.CreateOffer(context.Background(), CreateOfferInput{
		TargetWalletID: target.ID,
		Title:          title,
		Description:    "description of " + title,
		OfferType:      models.OfferTypeCash,
	})
	if err != nil {
		t.Fatalf("create offer %q: %v", title, err)
	}
	return o
}

// fixedClock makes the offer service see now as t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
