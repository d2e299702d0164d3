// services/scheduler.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"liquidity-marketplace/config"

	"github.com/go-co-op/gocron/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	LeaderboardKey  = "leaderboard/latest.json"
	LeaderboardSize = 50
)

// SnapshotPublisher stores a rendered snapshot under key and returns its public URL.
type SnapshotPublisher interface {
	Publish(ctx context.Context, key string, body []byte) (string, error)
}

type scheduledJob struct {
	name     string
	interval time.Duration
	run      func(context.Context) error
}

type Scheduler struct {
	Offers    *OfferService
	Stats     *StatsService
	Wallets   *WalletService
	Publisher SnapshotPublisher

	cfg   config.SchedulerConfig
	log   *zap.Logger
	sched gocron.Scheduler
}

func NewScheduler(cfg config.SchedulerConfig, offers *OfferService, stats *StatsService, wallets *WalletService, publisher SnapshotPublisher, log *zap.Logger) *Scheduler {
	return &Scheduler{
		Offers:    offers,
		Stats:     stats,
		Wallets:   wallets,
		Publisher: publisher,
		cfg:       cfg,
		log:       log.Named("scheduler"),
	}
}

// Start registers the periodic jobs and starts the scheduler. Jobs run with
// ctx, so cancelling it aborts in-flight queries.
func (s *Scheduler) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	jobs := []scheduledJob{
		{"expire-offers", s.cfg.ExpiryInterval, s.expireOffers},
		{"refresh-stats", s.cfg.StatsInterval, s.refreshStats},
	}
	if s.Publisher != nil {
		jobs = append(jobs, scheduledJob{"publish-leaderboard", s.cfg.SnapshotInterval, s.publishLeaderboard})
	}

	for _, j := range jobs {
		j := j
		_, err := sched.NewJob(
			gocron.DurationJob(j.interval),
			gocron.NewTask(func() {
				if err := j.run(ctx); err != nil {
					s.log.Error("job failed", zap.String("job", j.name), zap.Error(err))
				}
			}),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return fmt.Errorf("register job %s: %w", j.name, err)
		}
		s.log.Info("job registered", zap.String("job", j.name), zap.Duration("interval", j.interval))
	}

	sched.Start()
	s.sched = sched
	return nil
}

func (s *Scheduler) Shutdown() error {
	if s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}

func (s *Scheduler) expireOffers(ctx context.Context) error {
	n, err := s.Offers.ExpireOffers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("offers expired", zap.Int64("count", n))
	}
	return nil
}

func (s *Scheduler) refreshStats(ctx context.Context) error {
	snap, err := s.Stats.RefreshSnapshot(ctx)
	if err != nil {
		return err
	}
	s.log.Debug("stats snapshot refreshed",
		zap.Int64("wallets", snap.TotalWallets),
		zap.Int64("activeOffers", snap.ActiveOffers))
	return nil
}

type leaderboardEntry struct {
	Rank          int             `json:"rank"`
	Address       string          `json:"address"`
	TotalValueUsd decimal.Decimal `json:"totalValueUsd"`
	IsVerified    bool            `json:"isVerified"`
	Badges        []string        `json:"badges"`
}

type leaderboard struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Wallets     []leaderboardEntry `json:"wallets"`
}

// RenderLeaderboard returns the JSON document of the highest-valued wallets.
func (s *Scheduler) RenderLeaderboard(ctx context.Context) ([]byte, error) {
	wallets, err := s.Wallets.TopWallets(ctx, LeaderboardSize)
	if err != nil {
		return nil, err
	}
	board := leaderboard{GeneratedAt: time.Now().UTC(), Wallets: make([]leaderboardEntry, 0, len(wallets))}
	for i, w := range wallets {
		board.Wallets = append(board.Wallets, leaderboardEntry{
			Rank:          i + 1,
			Address:       w.Address,
			TotalValueUsd: w.TotalValueUsd,
			IsVerified:    w.IsVerified,
			Badges:        []string(w.Badges),
		})
	}
	return json.Marshal(board)
}

func (s *Scheduler) publishLeaderboard(ctx context.Context) error {
	body, err := s.RenderLeaderboard(ctx)
	if err != nil {
		return err
	}
	url, err := s.Publisher.Publish(ctx, LeaderboardKey, body)
	if err != nil {
		return fmt.Errorf("publish leaderboard: %w", err)
	}
	s.log.Info("leaderboard published", zap.String("url", url))
	return nil
}
