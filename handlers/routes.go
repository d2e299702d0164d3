// handlers/routes.go
package handlers

import (
	"liquidity-marketplace/middleware"
	"liquidity-marketplace/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps bundles what the route handlers need.
type Deps struct {
	DB         *gorm.DB
	Wallets    *services.WalletService
	Offers     *services.OfferService
	Messages   *services.MessageService
	Stats      *services.StatsService
	Prices     *services.PriceService
	Stream     *services.ActivityStream
	AdminToken string
	Log        *zap.Logger
}

func SetupRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", healthHandler(d.DB))

	api := app.Group("/api")
	SetupWalletRoutes(api, d.Wallets, d.Offers, d.Log)
	SetupOfferRoutes(api, d.Offers, d.Messages, d.Log)
	SetupStatsRoutes(api, d.Stats, d.Stream, d.Log)
	SetupPriceRoutes(api, d.Prices, d.Log)

	// operator routes exist only when a token is configured
	if d.AdminToken != "" {
		admin := api.Group("/admin", middleware.AdminTokenMiddleware(d.AdminToken, d.Log))
		SetupAdminRoutes(admin, d.Stats, d.Offers, d.Log)
	}
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  "database unreachable",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
