// handlers/prices.go
package handlers

import (
	"liquidity-marketplace/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type priceEntry struct {
	Symbol   string          `json:"symbol"`
	PriceUsd decimal.Decimal `json:"priceUsd"`
}

func priceEntries(table services.PriceTable) []priceEntry {
	out := make([]priceEntry, 0, len(table))
	for _, sym := range table.Symbols() {
		out = append(out, priceEntry{Symbol: sym, PriceUsd: table[sym]})
	}
	return out
}

func SetupPriceRoutes(api fiber.Router, prices *services.PriceService, log *zap.Logger) {
	api.Get("/prices", func(c *fiber.Ctx) error {
		table, err := prices.Prices(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"prices": priceEntries(table)})
	})

	// valuation preview; nothing is stored
	api.Post("/valuation", func(c *fiber.Ctx) error {
		var req balancesRequest
		if handled, err := parseAndValidate(c, &req); handled {
			return err
		}
		total, table, err := prices.Value(c.UserContext(), req.toBalances())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{
			"totalValueUsd": total,
			"prices":        priceEntries(table),
		})
	})
}
