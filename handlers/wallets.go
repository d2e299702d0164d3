// handlers/wallets.go
package handlers

import (
	"liquidity-marketplace/models"
	"liquidity-marketplace/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const embeddedBalances = "balancesRequest"

type balancesRequest struct {
	EthBalance   decimal.Decimal            `json:"ethBalance" validate:"gte=0"`
	StethBalance decimal.Decimal            `json:"stethBalance" validate:"gte=0"`
	RethBalance  decimal.Decimal            `json:"rethBalance" validate:"gte=0"`
	CbethBalance decimal.Decimal            `json:"cbethBalance" validate:"gte=0"`
	LrtBalances  map[string]decimal.Decimal `json:"lrtBalances" validate:"omitempty,dive,keys,required,max=32,endkeys,gte=0"`
}

func (b balancesRequest) toBalances() models.Balances {
	return models.Balances{
		Eth:   b.EthBalance,
		Steth: b.StethBalance,
		Reth:  b.RethBalance,
		Cbeth: b.CbethBalance,
		Lrt:   models.LRTBalances(b.LrtBalances),
	}
}

type preferencesRequest struct {
	Activities []string `json:"activities" validate:"omitempty,max=20,dive,max=64"`
	Region     string   `json:"region" validate:"max=64"`
}

type connectWalletRequest struct {
	Address string `json:"address" validate:"required,startswith=0x,hexadecimal,max=66"`
	balancesRequest
	TotalValueUsd       *decimal.Decimal   `json:"totalValueUsd" validate:"omitempty,gte=0"`
	Preferences         preferencesRequest `json:"preferences"`
	AvailableCapitalMin decimal.Decimal    `json:"availableCapitalMin" validate:"gte=0"`
	AvailableCapitalMax decimal.Decimal    `json:"availableCapitalMax" validate:"gte=0"`
	EmailAlertsEnabled  bool               `json:"emailAlertsEnabled"`
	Email               *string            `json:"email" validate:"omitempty,email,max=255"`
	IsVerified          bool               `json:"isVerified"`
	Badges              []string           `json:"badges" validate:"omitempty,max=20,dive,max=32"`
}

type updateAssetsRequest struct {
	balancesRequest
	TotalValueUsd *decimal.Decimal `json:"totalValueUsd" validate:"omitempty,gte=0"`
}

type paginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type walletHandler struct {
	wallets *services.WalletService
	offers  *services.OfferService
	log     *zap.Logger
}

func SetupWalletRoutes(api fiber.Router, wallets *services.WalletService, offers *services.OfferService, log *zap.Logger) {
	h := &walletHandler{wallets: wallets, offers: offers, log: log}

	api.Get("/wallets", h.list)
	api.Get("/wallets/address/:address", h.getByAddress)
	api.Post("/wallets/connect", h.connect)
	api.Put("/wallets/:id/assets", h.updateAssets)
	api.Get("/wallets/:id/offers", h.offersForWallet)
}

// list accepts page, limit, search, minEth, assetType, sortBy and sortOrder.
// Unparseable numbers fall back to their defaults.
func (h *walletHandler) list(c *fiber.Ctx) error {
	minEth, err := decimal.NewFromString(c.Query("minEth"))
	if err != nil {
		minEth = decimal.Zero
	}

	q := services.WalletQuery{
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", services.DefaultPageLimit),
		Search:    c.Query("search"),
		MinEth:    minEth,
		AssetType: c.Query("assetType"),
		SortBy:    c.Query("sortBy", services.SortByTotalValue),
		SortOrder: c.Query("sortOrder", "desc"),
	}

	page, err := h.wallets.ListWallets(c.UserContext(), q)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"wallets": page.Wallets,
		"pagination": paginationResponse{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.Pages,
		},
	})
}

func (h *walletHandler) getByAddress(c *fiber.Ctx) error {
	wallet, err := h.wallets.GetWalletByAddress(c.UserContext(), c.Params("address"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(wallet)
}

func (h *walletHandler) connect(c *fiber.Ctx) error {
	var req connectWalletRequest
	if handled, err := parseAndValidate(c, &req); handled {
		return err
	}

	wallet, err := h.wallets.ConnectWallet(c.UserContext(), services.ConnectWalletInput{
		Address:       req.Address,
		Balances:      req.toBalances(),
		TotalValueUsd: req.TotalValueUsd,
		Preferences: models.Preferences{
			Activities: req.Preferences.Activities,
			Region:     req.Preferences.Region,
		},
		AvailableCapitalMin: req.AvailableCapitalMin,
		AvailableCapitalMax: req.AvailableCapitalMax,
		EmailAlertsEnabled:  req.EmailAlertsEnabled,
		Email:               req.Email,
		IsVerified:          req.IsVerified,
		Badges:              req.Badges,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(wallet)
}

func (h *walletHandler) updateAssets(c *fiber.Ctx) error {
	var req updateAssetsRequest
	if handled, err := parseAndValidate(c, &req); handled {
		return err
	}

	wallet, err := h.wallets.UpdateWalletAssets(c.UserContext(), c.Params("id"), req.toBalances(), req.TotalValueUsd)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(wallet)
}

func (h *walletHandler) offersForWallet(c *fiber.Ctx) error {
	offers, err := h.offers.ListOffersByWallet(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(offers)
}
