package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"liquidity-marketplace/config"
	"liquidity-marketplace/models"
	"liquidity-marketplace/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedPrice is one entry of the price feed response.
type FeedPrice struct {
	Symbol   string          `json:"symbol"`
	PriceUsd decimal.Decimal `json:"priceUsd"`
}

// PriceSyncClient pulls reference prices from an external feed into asset_prices.
type PriceSyncClient struct {
	URL        string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
	log        *zap.Logger
}

func NewPriceSyncClient(cfg config.PriceFeedConfig, db *gorm.DB, log *zap.Logger) *PriceSyncClient {
	return &PriceSyncClient{
		URL:        cfg.URL,
		Token:      cfg.Token,
		HTTPClient: utils.NewHTTPClient(utils.DefaultHTTPTimeout),
		DB:         db,
		log:        log.Named("price-sync"),
	}
}

func (c *PriceSyncClient) FetchPrices(ctx context.Context) ([]FeedPrice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call price feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("price feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Prices []FeedPrice `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode price feed response: %w", err)
	}
	return payload.Prices, nil
}

// SyncOnce fetches the feed and upserts every valid price by symbol. Entries
// with an empty symbol or a negative price are skipped.
func (c *PriceSyncClient) SyncOnce(ctx context.Context) (int, error) {
	prices, err := c.FetchPrices(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	source := c.source()
	rows := make([]models.AssetPrice, 0, len(prices))
	seen := make(map[string]int, len(prices))
	for _, p := range prices {
		symbol := strings.ToLower(strings.TrimSpace(p.Symbol))
		if symbol == "" || p.PriceUsd.IsNegative() {
			c.log.Warn("skipping invalid feed entry", zap.String("symbol", p.Symbol))
			continue
		}
		row := models.AssetPrice{Symbol: symbol, PriceUsd: p.PriceUsd.Round(2), Source: source, UpdatedAt: now}
		// last entry for a symbol wins; one statement cannot touch a row twice
		if i, dup := seen[symbol]; dup {
			rows[i] = row
			continue
		}
		seen[symbol] = len(rows)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := c.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"price_usd", "source", "updated_at"}),
	}).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("upsert asset prices: %w", err)
	}
	return len(rows), nil
}

func (c *PriceSyncClient) source() string {
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return "feed"
	}
	return u.Host
}

// PollPrices syncs once immediately and then every interval until ctx is done.
// Failures are logged and retried on the next tick.
func PollPrices(ctx context.Context, client *PriceSyncClient, interval time.Duration) {
	client.log.Info("price polling started", zap.String("url", client.URL), zap.Duration("interval", interval))

	sync := func() {
		n, err := client.SyncOnce(ctx)
		if err != nil {
			client.log.Error("price sync failed", zap.Error(err))
			return
		}
		client.log.Debug("prices synced", zap.Int("count", n))
	}

	sync()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			client.log.Info("price polling stopped")
			return
		case <-ticker.C:
			sync()
		}
	}
}
