// handlers/stats.go
package handlers

import (
	"liquidity-marketplace/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func SetupStatsRoutes(api fiber.Router, stats *services.StatsService, stream *services.ActivityStream, log *zap.Logger) {
	api.Get("/stats", func(c *fiber.Ctx) error {
		st, err := stats.GetStats(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(st)
	})

	api.Get("/activity", func(c *fiber.Ctx) error {
		items, err := stats.RecentActivity(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(items)
	})

	if stream != nil {
		api.Get("/activity/stream", stream.Serve)
	}
}

func SetupAdminRoutes(admin fiber.Router, stats *services.StatsService, offers *services.OfferService, log *zap.Logger) {
	admin.Get("/stats/snapshot", func(c *fiber.Ctx) error {
		snap, err := stats.GetSnapshot(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(snap)
	})

	admin.Post("/stats/refresh", func(c *fiber.Ctx) error {
		snap, err := stats.RefreshSnapshot(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		log.Info("stats snapshot refreshed by operator")
		return c.JSON(snap)
	})

	admin.Post("/offers/expire", func(c *fiber.Ctx) error {
		n, err := offers.ExpireOffers(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		log.Info("expiry sweep run by operator", zap.Int64("expired", n))
		return c.JSON(fiber.Map{"expired": n})
	})
}
