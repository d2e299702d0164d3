// config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config aggregates application configuration values.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Admin     AdminConfig
	Seed      bool
	PriceFeed PriceFeedConfig
	Scheduler SchedulerConfig
	Storage   StorageConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type DatabaseConfig struct {
	Driver string // postgres|sqlite
	URL    string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string // json|console
}

type AdminConfig struct {
	Token string
}

// PriceFeedConfig points the price worker at an external reference price source.
// An empty URL disables polling.
type PriceFeedConfig struct {
	URL          string
	Token        string
	PollInterval time.Duration
}

type SchedulerConfig struct {
	ExpiryInterval   time.Duration
	StatsInterval    time.Duration
	SnapshotInterval time.Duration
}

// StorageConfig describes the S3-compatible bucket (Cloudflare R2) that receives
// leaderboard snapshots. An empty bucket disables publishing.
type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 5200)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SEED_DATA", false)
	v.SetDefault("PRICE_POLL_INTERVAL", "5m")
	v.SetDefault("SCHEDULER_EXPIRY_INTERVAL", "1m")
	v.SetDefault("SCHEDULER_STATS_INTERVAL", "5m")
	v.SetDefault("SCHEDULER_SNAPSHOT_INTERVAL", "1h")

	cfg := Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			AllowedOrigins:  splitCSV(v.GetString("ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER"))),
			URL:    v.GetString("DATABASE_URL"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Admin: AdminConfig{
			Token: v.GetString("ADMIN_TOKEN"),
		},
		Seed: v.GetBool("SEED_DATA"),
		PriceFeed: PriceFeedConfig{
			URL:          v.GetString("PRICE_FEED_URL"),
			Token:        v.GetString("PRICE_FEED_TOKEN"),
			PollInterval: v.GetDuration("PRICE_POLL_INTERVAL"),
		},
		Scheduler: SchedulerConfig{
			ExpiryInterval:   v.GetDuration("SCHEDULER_EXPIRY_INTERVAL"),
			StatsInterval:    v.GetDuration("SCHEDULER_STATS_INTERVAL"),
			SnapshotInterval: v.GetDuration("SCHEDULER_SNAPSHOT_INTERVAL"),
		},
		Storage: StorageConfig{
			AccountID:       v.GetString("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     v.GetString("R2_ACCESS_KEY_ID"),
			AccessKeySecret: v.GetString("R2_ACCESS_KEY_SECRET"),
			Bucket:          v.GetString("R2_BUCKET_NAME"),
			CDNBaseURL:      v.GetString("CDN_BASE_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL environment variable not set")
		}
	case DriverSQLite:
		// an empty URL means an in-memory database
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}

	intervals := map[string]time.Duration{
		"SERVER_SHUTDOWN_TIMEOUT":     c.Server.ShutdownTimeout,
		"PRICE_POLL_INTERVAL":         c.PriceFeed.PollInterval,
		"SCHEDULER_EXPIRY_INTERVAL":   c.Scheduler.ExpiryInterval,
		"SCHEDULER_STATS_INTERVAL":    c.Scheduler.StatsInterval,
		"SCHEDULER_SNAPSHOT_INTERVAL": c.Scheduler.SnapshotInterval,
	}
	for key, d := range intervals {
		if d <= 0 {
			return fmt.Errorf("%s must be a positive duration", key)
		}
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func splitCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
