package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultStreamInterval = 2 * time.Second
	DefaultStreamLifetime = 10 * time.Minute
)

// ActivityStream pushes newly created offers to connected clients as
// server-sent events. Each stream closes after Lifetime and EventSource
// clients reconnect on their own.
type ActivityStream struct {
	DB       *gorm.DB
	Interval time.Duration
	Lifetime time.Duration

	log *zap.Logger
	now func() time.Time
}

func NewActivityStream(db *gorm.DB, log *zap.Logger) *ActivityStream {
	return &ActivityStream{
		DB:       db,
		Interval: DefaultStreamInterval,
		Lifetime: DefaultStreamLifetime,
		log:      log.Named("activity-stream"),
		now:      time.Now,
	}
}

// newOffersSince returns offers created strictly after cursor, oldest first.
func (s *ActivityStream) newOffersSince(ctx context.Context, cursor time.Time) ([]activityRow, error) {
	var rows []activityRow
	err := s.DB.WithContext(ctx).
		Table("offers").
		Select("offers.id, offers.title, offers.created_at, offers.accepted_at, wallets.address").
		Joins("JOIN wallets ON wallets.id = offers.target_wallet_id").
		Where("offers.created_at > ?", cursor).
		Order("offers.created_at ASC").
		Order("offers.id ASC").
		Scan(&rows).Error
	return rows, err
}

// Serve streams `event: activity` frames until the client disconnects, the
// server shuts down or the stream lifetime runs out.
func (s *ActivityStream) Serve(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	shutdown := c.Context().Done()
	cursor := s.now().UTC()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		var (
			ctx    context.Context
			cancel context.CancelFunc
		)
		if s.Lifetime > 0 {
			ctx, cancel = context.WithTimeout(context.Background(), s.Lifetime)
		} else {
			ctx, cancel = context.WithCancel(context.Background())
		}
		defer cancel()

		go func() {
			select {
			case <-shutdown:
				cancel()
			case <-ctx.Done():
			}
		}()

		s.stream(ctx, w, cursor)
	})

	return nil
}

func (s *ActivityStream) stream(ctx context.Context, w *bufio.Writer, cursor time.Time) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.WriteString(":\n\n")
	if err := w.Flush(); err != nil {
		return
	}

	for {
		select {
		case <-ticker.C:
			rows, err := s.newOffersSince(ctx, cursor)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Warn("poll new offers", zap.Error(err))
				continue
			}
			if len(rows) == 0 {
				// keepalive
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}
				continue
			}

			cursor = rows[len(rows)-1].CreatedAt
			for _, r := range rows {
				payload, _ := json.Marshal(ActivityItem{
					ID:            r.ID,
					Type:          ActivityTypeOffer,
					Description:   "New offer: " + r.Title,
					Timestamp:     r.CreatedAt.UTC(),
					WalletAddress: r.Address,
				})
				fmt.Fprintf(w, "event: activity\ndata: %s\n\n", payload)
			}
			if err := w.Flush(); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
