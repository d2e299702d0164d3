package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"liquidity-marketplace/models"
)

func TestConnectWalletUpsertsByAddress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.wallets.ConnectWallet(ctx, ConnectWalletInput{
		Address:             "0xABCDEF0000000000000000000000000000000001",
		Balances:            models.Balances{Eth: dec("1")},
		TotalValueUsd:       decPtr("3500"),
		Preferences:         models.Preferences{Activities: []string{"Liquid Staking"}},
		AvailableCapitalMin: dec("100"),
		AvailableCapitalMax: dec("1000"),
		Badges:              []string{"early"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, err := env.wallets.ConnectWallet(ctx, ConnectWalletInput{
		Address:       "0xabcdef0000000000000000000000000000000001",
		Balances:      models.Balances{Eth: dec("2"), Steth: dec("3")},
		TotalValueUsd: decPtr("17440"),
		Preferences:   models.Preferences{Activities: []string{"ignored"}},
		Badges:        []string{"ignored"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var count int64
	env.db.Model(&models.Wallet{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 wallet row, got %d", count)
	}
	if second.ID != first.ID {
		t.Errorf("expected the same wallet id, got %s and %s", first.ID, second.ID)
	}
	if second.Address != "0xabcdef0000000000000000000000000000000001" {
		t.Errorf("expected lower-cased address, got %s", second.Address)
	}
	if !second.EthBalance.Equal(dec("2")) || !second.StethBalance.Equal(dec("3")) {
		t.Errorf("expected balances of the second connect, got eth=%s steth=%s", second.EthBalance, second.StethBalance)
	}
	if !second.TotalValueUsd.Equal(dec("17440")) {
		t.Errorf("expected total 17440, got %s", second.TotalValueUsd)
	}
	if acts := second.Preferences.Data().Activities; len(acts) != 1 || acts[0] != "liquid-staking" {
		t.Errorf("expected preferences from the first connect, got %v", acts)
	}
	if badges := []string(second.Badges); len(badges) != 1 || badges[0] != "early" {
		t.Errorf("expected badges from the first connect, got %v", badges)
	}
	if !second.AvailableCapitalMax.Equal(dec("1000")) {
		t.Errorf("expected capital max 1000, got %s", second.AvailableCapitalMax)
	}
}

func TestConnectWalletComputesValuationWhenOmitted(t *testing.T) {
	env := newTestEnv(t)

	w, err := env.wallets.ConnectWallet(context.Background(), ConnectWalletInput{
		Address:  "0x01",
		Balances: models.Balances{Eth: dec("2"), Lrt: models.LRTBalances{"ezeth": dec("1")}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// 2*3500 + 1*3510
	if !w.TotalValueUsd.Equal(dec("10510")) {
		t.Fatalf("expected 10510, got %s", w.TotalValueUsd)
	}
	if !w.LrtBalances.Data()["ezeth"].Equal(dec("1")) {
		t.Fatalf("expected stored ezeth balance 1, got %v", w.LrtBalances.Data())
	}
}

func TestConnectWalletUsesStoredPrices(t *testing.T) {
	env := newTestEnv(t)
	if err := env.db.Create(&models.AssetPrice{Symbol: "eth", PriceUsd: dec("1000"), Source: "test"}).Error; err != nil {
		t.Fatalf("seed price: %v", err)
	}

	w, err := env.wallets.ConnectWallet(context.Background(), ConnectWalletInput{
		Address:  "0x02",
		Balances: models.Balances{Eth: dec("3")},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !w.TotalValueUsd.Equal(dec("3000")) {
		t.Fatalf("expected 3000, got %s", w.TotalValueUsd)
	}
}

func TestListWalletsPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 25; i++ {
		env.connect(t, fmt.Sprintf("0x%040x", i+1), "1", fmt.Sprintf("%d", (i+1)*100))
	}

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		res, err := env.wallets.ListWallets(context.Background(), WalletQuery{Page: page, Limit: 10, SortBy: SortByTotalValue})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if res.Total != 25 || res.Pages != 3 {
			t.Fatalf("expected total 25 and 3 pages, got %d and %d", res.Total, res.Pages)
		}
		expected := 10
		if page == 3 {
			expected = 5
		}
		if len(res.Wallets) != expected {
			t.Fatalf("page %d: expected %d wallets, got %d", page, expected, len(res.Wallets))
		}
		for _, w := range res.Wallets {
			if seen[w.ID] {
				t.Fatalf("wallet %s returned on two pages", w.ID)
			}
			seen[w.ID] = true
		}
	}

	res, _ := env.wallets.ListWallets(context.Background(), WalletQuery{Page: 1, Limit: 10, SortBy: SortByTotalValue})
	if !res.Wallets[0].TotalValueUsd.Equal(dec("2500")) {
		t.Errorf("expected the most valuable wallet first, got %s", res.Wallets[0].TotalValueUsd)
	}
	for i := 1; i < len(res.Wallets); i++ {
		if res.Wallets[i].TotalValueUsd.GreaterThan(res.Wallets[i-1].TotalValueUsd) {
			t.Fatalf("wallets not sorted by value descending at index %d", i)
		}
	}

	asc, _ := env.wallets.ListWallets(context.Background(), WalletQuery{Limit: 1, SortBy: SortByTotalValue, SortOrder: "asc"})
	if !asc.Wallets[0].TotalValueUsd.Equal(dec("100")) {
		t.Errorf("expected the least valuable wallet first, got %s", asc.Wallets[0].TotalValueUsd)
	}
}

func TestListWalletsDefaultsAndLimits(t *testing.T) {
	env := newTestEnv(t)
	env.connect(t, "0x01", "1", "1")

	res, err := env.wallets.ListWallets(context.Background(), WalletQuery{Page: -3, Limit: 1000})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Page != 1 || res.Limit != MaxPageLimit {
		t.Fatalf("expected page 1 and limit %d, got %d and %d", MaxPageLimit, res.Page, res.Limit)
	}

	empty := newTestEnv(t)
	res, err = empty.wallets.ListWallets(context.Background(), WalletQuery{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Total != 0 || res.Pages != 0 || len(res.Wallets) != 0 {
		t.Fatalf("expected an empty page, got %+v", res)
	}
}

func TestListWalletsFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mustConnect := func(in ConnectWalletInput) {
		if _, err := env.wallets.ConnectWallet(ctx, in); err != nil {
			t.Fatalf("connect %s: %v", in.Address, err)
		}
	}
	mustConnect(ConnectWalletInput{
		Address:     "0xaaa1",
		Balances:    models.Balances{Eth: dec("20")},
		Preferences: models.Preferences{Activities: []string{"staking"}},
	})
	mustConnect(ConnectWalletInput{
		Address:     "0xbbb2",
		Balances:    models.Balances{Eth: dec("5"), Steth: dec("1")},
		Preferences: models.Preferences{Activities: []string{"nft"}},
	})
	mustConnect(ConnectWalletInput{
		Address:  "0xccc3",
		Balances: models.Balances{Lrt: models.LRTBalances{"rseth": dec("2")}},
	})

	tests := []struct {
		name     string
		query    WalletQuery
		expected int64
	}{
		{"no filters", WalletQuery{}, 3},
		{"empty search matches all", WalletQuery{Search: "   "}, 3},
		{"search by address", WalletQuery{Search: "AAA"}, 1},
		{"search by preference tag", WalletQuery{Search: "nft"}, 1},
		{"like wildcards are literal", WalletQuery{Search: "%"}, 0},
		{"min eth", WalletQuery{MinEth: dec("10")}, 1},
		{"asset all", WalletQuery{AssetType: "all"}, 3},
		{"asset steth case-insensitive", WalletQuery{AssetType: "stETH"}, 1},
		{"asset lrts", WalletQuery{AssetType: "lrts"}, 1},
		{"filters combine", WalletQuery{Search: "0x", MinEth: dec("1"), AssetType: "steth"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.wallets.ListWallets(ctx, tt.query)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if res.Total != tt.expected || int64(len(res.Wallets)) != tt.expected {
				t.Fatalf("expected %d wallets, got total=%d len=%d", tt.expected, res.Total, len(res.Wallets))
			}
		})
	}

	if _, err := env.wallets.ListWallets(ctx, WalletQuery{AssetType: "doge"}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery for unknown asset type, got %v", err)
	}
}

func TestListWalletsSortByOffersCount(t *testing.T) {
	env := newTestEnv(t)
	quiet := env.connect(t, "0x01", "1", "100")
	busy := env.connect(t, "0x02", "1", "50")
	env.offer(t, busy, "one")
	env.offer(t, busy, "two")
	env.offer(t, quiet, "three")

	res, err := env.wallets.ListWallets(context.Background(), WalletQuery{SortBy: SortByOffersCount})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Wallets[0].ID != busy.ID {
		t.Fatalf("expected wallet with most offers first, got %s", res.Wallets[0].Address)
	}
}

func TestGetWalletByAddress(t *testing.T) {
	env := newTestEnv(t)
	w := env.connect(t, "0xAbC", "1", "1")

	got, err := env.wallets.GetWalletByAddress(context.Background(), "0xABC")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != w.ID {
		t.Fatalf("expected wallet %s, got %s", w.ID, got.ID)
	}

	if _, err := env.wallets.GetWalletByAddress(context.Background(), "0xab"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a prefix, got %v", err)
	}
}

func TestUpdateWalletAssets(t *testing.T) {
	env := newTestEnv(t)
	w := env.connect(t, "0x01", "1", "3500")

	updated, err := env.wallets.UpdateWalletAssets(context.Background(), w.ID, models.Balances{Eth: dec("4")}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.EthBalance.Equal(dec("4")) || !updated.TotalValueUsd.Equal(dec("14000")) {
		t.Fatalf("expected eth 4 and value 14000, got %s and %s", updated.EthBalance, updated.TotalValueUsd)
	}
	if updated.LastActive.Before(w.LastActive) {
		t.Errorf("expected last active to move forward")
	}

	if _, err := env.wallets.UpdateWalletAssets(context.Background(), "missing", models.Balances{}, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListWalletsRejectsOverflowingPage(t *testing.T) {
	env := newTestEnv(t)
	env.connect(t, "0x01", "1", "1")

	_, err := env.wallets.ListWallets(context.Background(), WalletQuery{Page: math.MaxInt/MaxPageLimit + 2, Limit: MaxPageLimit})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}

	last := math.MaxInt / MaxPageLimit
	res, err := env.wallets.ListWallets(context.Background(), WalletQuery{Page: last, Limit: MaxPageLimit})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Page != last || len(res.Wallets) != 0 {
		t.Fatalf("expected an empty page %d, got page %d with %d wallets", last, res.Page, len(res.Wallets))
	}
}

func TestSuppliedValuationIsRoundedToCents(t *testing.T) {
	env := newTestEnv(t)
	w := env.connect(t, "0x01", "1", "1234.5678")
	if !w.TotalValueUsd.Equal(dec("1234.57")) {
		t.Fatalf("expected 1234.57, got %s", w.TotalValueUsd)
	}

	updated, err := env.wallets.UpdateWalletAssets(context.Background(), w.ID, models.Balances{Eth: dec("2")}, decPtr("99.999"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.TotalValueUsd.Equal(dec("100")) {
		t.Fatalf("expected 100, got %s", updated.TotalValueUsd)
	}
}
