package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yanex66/vouchly/internal/middleware"
	"github.com/yanex66/vouchly/internal/service"
)

type ProfileRequest struct {
	Image string `json:"image" form:"image" validate:"required,max=255"`
}

type RedeemRequest struct {
	Amount Amount `json:"amount" form:"amount" validate:"required"`
}

type PayoutRequest struct {
	Amount        Amount `json:"amount" form:"amount" validate:"required"`
	BankName      string `json:"bank_name" form:"bank_name" validate:"required"`
	AccountNumber string `json:"account_number" form:"account_number" validate:"required"`
	AccountName   string `json:"account_name" form:"account_name" validate:"required,max=100"`
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.dashboardSvc.Get(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dashboard)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	profile, err := h.userSvc.UpdateProfileImage(c.Context(), middleware.GetUserID(c), req.Image)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"profile": profile,
		"message": "Your profile has been updated!",
	})
}

// Redeem converts token rewards into spendable balance.
func (h *Handler) Redeem(c *fiber.Ctx) error {
	var req RedeemRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	profile, err := h.ledgerSvc.Redeem(c.Context(), middleware.GetUserID(c), req.Amount.String())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"token_rewards": profile.TokenRewards,
		"balance":       profile.Balance,
		"message":       "Successfully redeemed " + req.Amount.String() + " tokens.",
	})
}

// PayoutForm returns the saved bank details and the limits for a new request.
func (h *Handler) PayoutForm(c *fiber.Ctx) error {
	form, err := h.payoutSvc.GetForm(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(form)
}

func (h *Handler) RequestPayout(c *fiber.Ctx) error {
	var req PayoutRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	payout, err := h.payoutSvc.Submit(c.Context(), middleware.GetUserID(c), service.PayoutInput{
		Amount:        req.Amount.String(),
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payout":  payout,
		"message": "Payout request submitted! Your details have been saved.",
	})
}

func (h *Handler) GetTransactions(c *fiber.Ctx) error {
	limit, offset := service.TransactionPage(c.QueryInt("limit", 20), c.QueryInt("offset", 0))

	transactions, err := h.ledgerSvc.GetTransactions(c.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"transactions": transactions,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *Handler) GetReferrals(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	stats, err := h.referralSvc.GetReferralStats(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	referrals, err := h.referralSvc.GetReferrals(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	items, err := h.referralSvc.GetItemReferrals(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"stats":          stats,
		"referrals":      referrals,
		"item_referrals": items,
		"signup_link":    service.SignupLink(h.cfg.Server.PublicURL, middleware.GetUsername(c)),
	})
}
