// services/valuation.go
package services

import (
	"sort"
	"strings"

	"liquidity-marketplace/models"

	"github.com/shopspring/decimal"
)

// Asset symbols carried as dedicated wallet columns.
const (
	AssetETH   = "eth"
	AssetStETH = "steth"
	AssetRETH  = "reth"
	AssetCbETH = "cbeth"
)

// PriceTable maps a lower-case asset symbol to its USD reference price.
type PriceTable map[string]decimal.Decimal

// DefaultPrices is the fallback reference table used until a price feed has
// written asset_prices rows.
func DefaultPrices() PriceTable {
	return PriceTable{
		AssetETH:   decimal.NewFromInt(3500),
		AssetStETH: decimal.NewFromInt(3480),
		AssetRETH:  decimal.NewFromInt(3520),
		AssetCbETH: decimal.NewFromInt(3490),
		"ezeth":    decimal.NewFromInt(3510),
		"rseth":    decimal.NewFromInt(3505),
	}
}

// Merge returns a copy of p with every entry of override applied on top.
func (p PriceTable) Merge(override PriceTable) PriceTable {
	out := make(PriceTable, len(p)+len(override))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range override {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Symbols lists the table keys in a stable order.
func (p PriceTable) Symbols() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TotalValueUSD multiplies every balance by its reference price and sums the
// results, rounded to cents. LRT tokens without a price contribute nothing.
func TotalValueUSD(b models.Balances, prices PriceTable) decimal.Decimal {
	total := decimal.Zero
	total = total.Add(b.Eth.Mul(prices[AssetETH]))
	total = total.Add(b.Steth.Mul(prices[AssetStETH]))
	total = total.Add(b.Reth.Mul(prices[AssetRETH]))
	total = total.Add(b.Cbeth.Mul(prices[AssetCbETH]))

	for token, balance := range b.Lrt {
		price, ok := prices[strings.ToLower(token)]
		if !ok {
			continue
		}
		total = total.Add(balance.Mul(price))
	}
	return total.Round(2)
}
