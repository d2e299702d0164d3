package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/marketplace")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Server.Port != 5200 {
		t.Errorf("expected default port 5200, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("expected postgres driver, got %s", cfg.Database.Driver)
	}
	if cfg.Scheduler.ExpiryInterval != time.Minute {
		t.Errorf("expected 1m expiry interval, got %s", cfg.Scheduler.ExpiryInterval)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected allowed origins %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("PRICE_POLL_INTERVAL", "30s")
	t.Setenv("SEED_DATA", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %s", cfg.Database.Driver)
	}
	if cfg.Server.Addr() != ":8081" {
		t.Errorf("expected :8081, got %s", cfg.Server.Addr())
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected allowed origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.PriceFeed.PollInterval != 30*time.Second {
		t.Errorf("expected 30s poll interval, got %s", cfg.PriceFeed.PollInterval)
	}
	if !cfg.Seed {
		t.Error("expected seed to be enabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {"DATABASE_DRIVER": "postgres", "DATABASE_URL": ""},
		"unknown driver":       {"DATABASE_DRIVER": "mysql"},
		"port out of range":    {"DATABASE_DRIVER": "sqlite", "SERVER_PORT": "70000"},
		"bad interval":         {"DATABASE_DRIVER": "sqlite", "SCHEDULER_STATS_INTERVAL": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
