package services

import (
	"context"
	"fmt"

	"liquidity-marketplace/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PriceService struct {
	DB *gorm.DB
}

func NewPriceService(db *gorm.DB) *PriceService {
	return &PriceService{DB: db}
}

// Prices returns the effective reference table: the defaults overlaid with
// every stored asset_prices row.
func (s *PriceService) Prices(ctx context.Context) (PriceTable, error) {
	var rows []models.AssetPrice
	if err := s.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load asset prices: %w", err)
	}

	stored := make(PriceTable, len(rows))
	for _, r := range rows {
		stored[r.Symbol] = r.PriceUsd
	}
	return DefaultPrices().Merge(stored), nil
}

// Value prices a balance set with the effective table and returns the total
// together with the table that produced it.
func (s *PriceService) Value(ctx context.Context, b models.Balances) (decimal.Decimal, PriceTable, error) {
	prices, err := s.Prices(ctx)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return TotalValueUSD(b, prices), prices, nil
}
