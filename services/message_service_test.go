package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMessagesThread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	holder := env.connect(t, "0x01", "1", "1")
	sender := env.connect(t, "0x02", "1", "1")
	offer := env.offer(t, holder, "deal")

	for _, content := range []string{"first", "second"} {
		if _, err := env.messages.CreateMessage(ctx, CreateMessageInput{
			OfferID:      offer.ID,
			FromWalletID: &sender.ID,
			ToWalletID:   &holder.ID,
			Content:      content,
		}); err != nil {
			t.Fatalf("create %s: %v", content, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	msgs, err := env.messages.ListByOffer(ctx, offer.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Fatalf("expected messages oldest first, got %+v", msgs)
	}
	if msgs[0].IsRead {
		t.Fatalf("expected new messages to be unread")
	}

	read, err := env.messages.MarkRead(ctx, msgs[0].ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.IsRead {
		t.Fatalf("expected message to be read")
	}
}

func TestCreateMessageRequiresExistingRefs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	holder := env.connect(t, "0x01", "1", "1")
	offer := env.offer(t, holder, "deal")
	missing := "missing"

	if _, err := env.messages.CreateMessage(ctx, CreateMessageInput{OfferID: "missing", Content: "hi"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown offer, got %v", err)
	}
	if _, err := env.messages.CreateMessage(ctx, CreateMessageInput{OfferID: offer.ID, ToWalletID: &missing, Content: "hi"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown wallet, got %v", err)
	}
	if _, err := env.messages.MarkRead(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
