// handlers/offers.go
package handlers

import (
	"time"

	"liquidity-marketplace/models"
	"liquidity-marketplace/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type createOfferRequest struct {
	TargetWalletID   string           `json:"targetWalletId" validate:"omitempty,max=36"`
	TargetAddress    string           `json:"targetAddress" validate:"omitempty,startswith=0x,hexadecimal,max=66"`
	FromWalletID     string           `json:"fromWalletId" validate:"omitempty,max=36"`
	FromAddress      string           `json:"fromAddress" validate:"omitempty,startswith=0x,hexadecimal,max=66"`
	FromAnonymousTag *string          `json:"fromAnonymousTag" validate:"omitempty,max=64"`
	Title            string           `json:"title" validate:"required,max=200"`
	Description      string           `json:"description" validate:"required,max=5000"`
	OfferType        string           `json:"offerType" validate:"required,oneof=cash tokens nft irl other"`
	Category         string           `json:"category" validate:"omitempty,oneof=defi nft irl other"`
	RewardValue      *decimal.Decimal `json:"rewardValue" validate:"omitempty,gte=0"`
	ExpiryDate       *time.Time       `json:"expiryDate"`
	ContactInfo      *string          `json:"contactInfo" validate:"omitempty,max=255"`
	TermsLink        *string          `json:"termsLink" validate:"omitempty,url,max=2048"`
}

type createMessageRequest struct {
	OfferID      string  `json:"offerId" validate:"required,max=36"`
	FromWalletID *string `json:"fromWalletId" validate:"omitempty,max=36"`
	ToWalletID   *string `json:"toWalletId" validate:"omitempty,max=36"`
	Content      string  `json:"content" validate:"required,max=5000"`
}

type offerHandler struct {
	offers   *services.OfferService
	messages *services.MessageService
	log      *zap.Logger
}

func SetupOfferRoutes(api fiber.Router, offers *services.OfferService, messages *services.MessageService, log *zap.Logger) {
	h := &offerHandler{offers: offers, messages: messages, log: log}

	api.Get("/offers/top", h.top)
	api.Post("/offers", h.create)
	api.Post("/offers/:id/accept", h.accept)
	api.Get("/offers/:id/messages", h.listMessages)

	api.Post("/messages", h.createMessage)
	api.Patch("/messages/:id/read", h.markRead)
}

func (h *offerHandler) create(c *fiber.Ctx) error {
	var req createOfferRequest
	if handled, err := parseAndValidate(c, &req); handled {
		return err
	}

	offer, err := h.offers.CreateOffer(c.UserContext(), services.CreateOfferInput{
		TargetWalletID:   req.TargetWalletID,
		TargetAddress:    req.TargetAddress,
		FromWalletID:     req.FromWalletID,
		FromAddress:      req.FromAddress,
		FromAnonymousTag: req.FromAnonymousTag,
		Title:            req.Title,
		Description:      req.Description,
		OfferType:        models.OfferType(req.OfferType),
		Category:         models.OfferCategory(req.Category),
		RewardValue:      req.RewardValue,
		ExpiryDate:       req.ExpiryDate,
		ContactInfo:      req.ContactInfo,
		TermsLink:        req.TermsLink,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	h.log.Info("offer created",
		zap.String("offer_id", offer.ID),
		zap.String("target_wallet_id", offer.TargetWalletID))
	return c.Status(fiber.StatusCreated).JSON(offer)
}

func (h *offerHandler) accept(c *fiber.Ctx) error {
	offer, err := h.offers.AcceptOffer(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(offer)
}

func (h *offerHandler) top(c *fiber.Ctx) error {
	offers, err := h.offers.TopOffers(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(offers)
}

func (h *offerHandler) listMessages(c *fiber.Ctx) error {
	messages, err := h.messages.ListByOffer(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(messages)
}

func (h *offerHandler) createMessage(c *fiber.Ctx) error {
	var req createMessageRequest
	if handled, err := parseAndValidate(c, &req); handled {
		return err
	}

	msg, err := h.messages.CreateMessage(c.UserContext(), services.CreateMessageInput{
		OfferID:      req.OfferID,
		FromWalletID: req.FromWalletID,
		ToWalletID:   req.ToWalletID,
		Content:      req.Content,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *offerHandler) markRead(c *fiber.Ctx) error {
	msg, err := h.messages.MarkRead(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(msg)
}
