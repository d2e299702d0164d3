// services/message_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"liquidity-marketplace/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageService struct {
	DB      *gorm.DB
	Offers  *OfferService
	Wallets *WalletService
}

func NewMessageService(db *gorm.DB, offers *OfferService, wallets *WalletService) *MessageService {
	return &MessageService{DB: db, Offers: offers, Wallets: wallets}
}

type CreateMessageInput struct {
	OfferID      string
	FromWalletID *string
	ToWalletID   *string
	Content      string
}

// ListByOffer returns the thread of an offer, oldest first.
func (s *MessageService) ListByOffer(ctx context.Context, offerID string) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	if err := s.DB.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (s *MessageService) CreateMessage(ctx context.Context, in CreateMessageInput) (*models.Message, error) {
	if _, err := s.Offers.GetOffer(ctx, in.OfferID); err != nil {
		return nil, err
	}
	for _, id := range []*string{in.FromWalletID, in.ToWalletID} {
		if id == nil {
			continue
		}
		if _, err := s.Wallets.GetWalletByID(ctx, *id); err != nil {
			return nil, err
		}
	}

	msg := &models.Message{
		ID:           uuid.NewString(),
		OfferID:      in.OfferID,
		FromWalletID: in.FromWalletID,
		ToWalletID:   in.ToWalletID,
		Content:      strings.TrimSpace(in.Content),
		IsRead:       false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

func (s *MessageService) MarkRead(ctx context.Context, id string) (*models.Message, error) {
	res := s.DB.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return nil, fmt.Errorf("mark message read: %w", res.Error)
	}

	var msg models.Message
	if err := s.DB.WithContext(ctx).First(&msg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &msg, nil
}
