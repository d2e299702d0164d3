package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"liquidity-marketplace/config"
	"liquidity-marketplace/models"
)

type fakePublisher struct {
	key  string
	body []byte
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, key string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key, f.body = key, body
	return "https://cdn.example/" + key, nil
}

func newTestScheduler(env *testEnv, pub SnapshotPublisher) *Scheduler {
	cfg := config.SchedulerConfig{
		ExpiryInterval:   time.Hour,
		StatsInterval:    time.Hour,
		SnapshotInterval: time.Hour,
	}
	return NewScheduler(cfg, env.offers, env.stats, env.wallets, pub, testLogger())
}

func TestSchedulerPublishLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	env.connect(t, "0x01", "1", "100")
	env.connect(t, "0x02", "1", "300")

	pub := &fakePublisher{}
	s := newTestScheduler(env, pub)
	if err := s.publishLeaderboard(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pub.key != LeaderboardKey {
		t.Fatalf("expected key %s, got %s", LeaderboardKey, pub.key)
	}

	var board struct {
		Wallets []struct {
			Rank    int    `json:"rank"`
			Address string `json:"address"`
		} `json:"wallets"`
	}
	if err := json.Unmarshal(pub.body, &board); err != nil {
		t.Fatalf("failed to decode leaderboard: %v", err)
	}
	if len(board.Wallets) != 2 || board.Wallets[0].Address != "0x02" || board.Wallets[0].Rank != 1 {
		t.Fatalf("unexpected leaderboard %+v", board.Wallets)
	}

	pub.err = errors.New("bucket unavailable")
	if err := s.publishLeaderboard(context.Background()); err == nil {
		t.Fatalf("expected publish error to be returned")
	}
}

func TestSchedulerJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.connect(t, "0x01", "1", "50")

	past := time.Now().UTC().Add(-time.Hour)
	if _, err := env.offers.CreateOffer(ctx, CreateOfferInput{
		TargetWalletID: w.ID, Title: "old", Description: "d", OfferType: models.OfferTypeCash, ExpiryDate: &past,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	s := newTestScheduler(env, nil)
	if err := s.expireOffers(ctx); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if err := s.refreshStats(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	snap, _ := env.stats.GetSnapshot(ctx)
	if snap.TotalWallets != 1 || snap.ActiveOffers != 0 {
		t.Fatalf("expected 1 wallet and 0 active offers, got %+v", snap)
	}
}

func TestSchedulerStartAndShutdown(t *testing.T) {
	env := newTestEnv(t)
	s := newTestScheduler(env, &fakePublisher{})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if jobs := s.sched.Jobs(); len(jobs) != 3 {
		t.Fatalf("expected 3 jobs with a publisher, got %d", len(jobs))
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSeedSampleData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seeded, err := SeedSampleData(ctx, env.db, testLogger())
	if err != nil || !seeded {
		t.Fatalf("expected seeding, got %v, %v", seeded, err)
	}

	st, err := env.stats.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalWallets != 3 || st.ActiveOffers != 2 || !st.TotalValueUsd.Equal(dec("356721.30")) {
		t.Fatalf("unexpected stats after seeding %+v", st)
	}

	snap, _ := env.stats.GetSnapshot(ctx)
	if snap.TotalWallets != 3 || !snap.TotalValueUsd.Equal(dec("356721.3")) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	seeded, err = SeedSampleData(ctx, env.db, testLogger())
	if err != nil || seeded {
		t.Fatalf("expected second seed to be skipped, got %v, %v", seeded, err)
	}
}

func TestActivityStreamNewOffersSince(t *testing.T) {
	env := newTestEnv(t)
	w := env.connect(t, "0x01", "1", "1")
	stream := NewActivityStream(env.db, testLogger())

	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	env.offers.now = fixedClock(base)
	env.offer(t, w, "before")
	env.offers.now = fixedClock(base.Add(time.Minute))
	env.offer(t, w, "after")

	rows, err := stream.newOffersSince(context.Background(), base)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "after" || rows[0].Address != "0x01" {
		t.Fatalf("expected only the later offer, got %+v", rows)
	}
}
