package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"liquidity-marketplace/config"
	"liquidity-marketplace/handlers"
	"liquidity-marketplace/logger"
	"liquidity-marketplace/middleware"
	"liquidity-marketplace/models"
	"liquidity-marketplace/services"
	"liquidity-marketplace/utils"
	"liquidity-marketplace/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	lg, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer lg.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := utils.OpenDatabase(cfg.Database, lg)
	if err != nil {
		lg.Fatal("database", zap.Error(err))
	}
	if err := models.AutoMigrate(db); err != nil {
		lg.Fatal("failed to migrate database", zap.Error(err))
	}

	if cfg.Seed {
		if _, err := services.SeedSampleData(ctx, db, lg); err != nil {
			lg.Fatal("failed to seed sample data", zap.Error(err))
		}
	}

	priceService := services.NewPriceService(db)
	walletService := services.NewWalletService(db, priceService)
	offerService := services.NewOfferService(db, walletService)
	messageService := services.NewMessageService(db, offerService, walletService)
	statsService := services.NewStatsService(db)
	activityStream := services.NewActivityStream(db, lg)

	var publisher services.SnapshotPublisher
	r2, err := utils.NewSnapshotPublisher(ctx, cfg.Storage)
	switch {
	case err == nil:
		publisher = r2
	case errors.Is(err, utils.ErrStorageDisabled):
		lg.Info("leaderboard publishing disabled, no bucket configured")
	default:
		lg.Fatal("failed to initialize R2 client", zap.Error(err))
	}

	scheduler := services.NewScheduler(cfg.Scheduler, offerService, statsService, walletService, publisher, lg)
	if err := scheduler.Start(ctx); err != nil {
		lg.Fatal("failed to start scheduler", zap.Error(err))
	}

	if cfg.PriceFeed.URL != "" {
		priceClient := workers.NewPriceSyncClient(cfg.PriceFeed, db, lg)
		go workers.PollPrices(ctx, priceClient, cfg.PriceFeed.PollInterval)
	} else {
		lg.Info("price feed disabled, using stored and default prices")
	}

	app := fiber.New(fiber.Config{
		AppName:               "liquidity-marketplace",
		DisableStartupMessage: true,
	})
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(lg.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowMethods:  "GET,POST,PUT,PATCH,OPTIONS,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
		MaxAge:        86400,
	}))

	handlers.SetupRoutes(app, handlers.Deps{
		DB:         db,
		Wallets:    walletService,
		Offers:     offerService,
		Messages:   messageService,
		Stats:      statsService,
		Prices:     priceService,
		Stream:     activityStream,
		AdminToken: cfg.Admin.Token,
		Log:        lg,
	})

	go func() {
		if err := app.Listen(cfg.Server.Addr()); err != nil {
			lg.Error("server error", zap.Error(err))
			stop()
		}
	}()

	lg.Info("server running",
		zap.String("addr", cfg.Server.Addr()),
		zap.Strings("origins", cfg.Server.AllowedOrigins),
		zap.Bool("admin_routes", cfg.Admin.Token != ""))

	<-ctx.Done()
	lg.Info("shutting down server")

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		lg.Error("server shutdown", zap.Error(err))
	}
	if err := scheduler.Shutdown(); err != nil {
		lg.Error("scheduler shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
