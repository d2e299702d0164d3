// services/offer_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"liquidity-marketplace/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TopOffersLimit caps the top-offers listing.
const TopOffersLimit = 10

type OfferService struct {
	DB      *gorm.DB
	Wallets *WalletService
	now     func() time.Time
}

func NewOfferService(db *gorm.DB, wallets *WalletService) *OfferService {
	return &OfferService{DB: db, Wallets: wallets, now: func() time.Time { return time.Now().UTC() }}
}

// CreateOfferInput identifies the target either by wallet id or by exact address.
type CreateOfferInput struct {
	TargetWalletID   string
	TargetAddress    string
	FromWalletID     string
	FromAddress      string
	FromAnonymousTag *string
	Title            string
	Description      string
	OfferType        models.OfferType
	Category         models.OfferCategory
	RewardValue      *decimal.Decimal
	ExpiryDate       *time.Time
	ContactInfo      *string
	TermsLink        *string
}

// CreateOffer resolves the target (and optional source) wallet by its unique key
// and stores a new active offer. A missing target is ErrNotFound and nothing is written.
func (s *OfferService) CreateOffer(ctx context.Context, in CreateOfferInput) (*models.Offer, error) {
	target, err := s.resolveWallet(ctx, in.TargetWalletID, in.TargetAddress)
	if err != nil {
		return nil, fmt.Errorf("target wallet: %w", err)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: target wallet is required", ErrInvalidQuery)
	}

	var fromID *string
	from, err := s.resolveWallet(ctx, in.FromWalletID, in.FromAddress)
	if err != nil {
		return nil, fmt.Errorf("source wallet: %w", err)
	}
	if from != nil {
		fromID = &from.ID
	}

	category := in.Category
	if category == "" {
		category = models.OfferCategoryDefi
	}

	var expiry *time.Time
	if in.ExpiryDate != nil {
		e := in.ExpiryDate.UTC()
		expiry = &e
	}

	now := s.now().UTC()
	offer := &models.Offer{
		ID:               uuid.NewString(),
		TargetWalletID:   target.ID,
		FromWalletID:     fromID,
		FromAnonymousTag: in.FromAnonymousTag,
		Title:            strings.TrimSpace(in.Title),
		Description:      strings.TrimSpace(in.Description),
		OfferType:        in.OfferType,
		Category:         category,
		RewardValue:      in.RewardValue,
		ExpiryDate:       expiry,
		IsActive:         true,
		IsAccepted:       false,
		ContactInfo:      in.ContactInfo,
		TermsLink:        in.TermsLink,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.DB.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	return offer, nil
}

func (s *OfferService) resolveWallet(ctx context.Context, id, address string) (*models.Wallet, error) {
	switch {
	case strings.TrimSpace(id) != "":
		return s.Wallets.GetWalletByID(ctx, strings.TrimSpace(id))
	case strings.TrimSpace(address) != "":
		return s.Wallets.GetWalletByAddress(ctx, address)
	default:
		return nil, nil
	}
}

func (s *OfferService) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	err := s.DB.WithContext(ctx).First(&offer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("offer %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get offer: %w", err)
	}
	return &offer, nil
}

// AcceptOffer marks an active, unexpired offer accepted. The update is
// conditional, so a second accept leaves the first acceptedAt in place and
// returns the offer unchanged.
func (s *OfferService) AcceptOffer(ctx context.Context, id string) (*models.Offer, error) {
	now := s.now().UTC()
	res := s.DB.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND is_accepted = ? AND is_active = ?", id, false, true).
		Where("(expiry_date IS NULL OR expiry_date > ?)", now).
		Updates(map[string]interface{}{
			"is_accepted": true,
			"accepted_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("accept offer: %w", res.Error)
	}

	offer, err := s.GetOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected > 0 || offer.IsAccepted {
		return offer, nil
	}
	if offer.Expired(now) {
		return nil, fmt.Errorf("offer %s: %w", id, ErrOfferExpired)
	}
	return nil, fmt.Errorf("offer %s: %w", id, ErrOfferInactive)
}

// ListOffersByWallet returns the offers targeting a wallet, newest first.
func (s *OfferService) ListOffersByWallet(ctx context.Context, walletID string) ([]models.Offer, error) {
	offers := make([]models.Offer, 0)
	if err := s.DB.WithContext(ctx).
		Where("target_wallet_id = ?", walletID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("list offers for wallet: %w", err)
	}
	return offers, nil
}

// TopOffers returns the newest active offers.
func (s *OfferService) TopOffers(ctx context.Context) ([]models.Offer, error) {
	offers := make([]models.Offer, 0, TopOffersLimit)
	if err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Order("id ASC").
		Limit(TopOffersLimit).
		Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("top offers: %w", err)
	}
	return offers, nil
}

// ExpireOffers deactivates every active, unaccepted offer whose expiry has
// passed and returns how many were changed.
func (s *OfferService) ExpireOffers(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	res := s.DB.WithContext(ctx).Model(&models.Offer{}).
		Where("is_active = ? AND is_accepted = ?", true, false).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", now).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("expire offers: %w", res.Error)
	}
	return res.RowsAffected, nil
}
