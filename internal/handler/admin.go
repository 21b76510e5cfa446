package handler

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanex66/vouchly/internal/middleware"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/service"
)

// AdminHandler handles operator requests
type AdminHandler struct {
	adminSvc *service.AdminService
	validate *validator.Validate
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminSvc *service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, validate: newValidator()}
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid " + name,
		})
	}
	return id, true, nil
}

// --- Payouts ---

// ListPayouts lists payout requests, optionally filtered by ?status=
func (h *AdminHandler) ListPayouts(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var status *model.PayoutStatus
	if raw := c.Query("status"); raw != "" {
		st, ok := model.ParsePayoutStatus(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown payout status",
			})
		}
		status = &st
	}

	payouts, err := h.adminSvc.ListPayouts(c.Context(), adminID, status, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"payouts": payouts})
}

type PayoutStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdatePayoutStatus moves a payout through its lifecycle
func (h *AdminHandler) UpdatePayoutStatus(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)
	id, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	var req PayoutStatusRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	payout, err := h.adminSvc.TransitionPayout(c.Context(), adminID, id, model.PayoutStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payout)
}

// --- Reviews ---

// FeatureReview makes a review the single featured one
func (h *AdminHandler) FeatureReview(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)
	id, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	if err := h.adminSvc.FeatureReview(c.Context(), adminID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *AdminHandler) UnfeatureReview(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)
	id, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	if err := h.adminSvc.UnfeatureReview(c.Context(), adminID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// --- Referrals ---

// RecordSale credits the referrer of an item referral with a sale
func (h *AdminHandler) RecordSale(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)
	id, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	ref, err := h.adminSvc.RecordSale(c.Context(), adminID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ref)
}

// --- Catalog ---

type CreateCategoryRequest struct {
	Name     string     `json:"name" validate:"required,max=100"`
	Slug     string     `json:"slug,omitempty" validate:"max=100"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Icon     *string    `json:"icon,omitempty"`
}

func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)

	var req CreateCategoryRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	category, err := h.adminSvc.CreateCategory(c.Context(), adminID, service.CategoryInput{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
		Icon:     req.Icon,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

type CreateItemRequest struct {
	CategoryID     uuid.UUID            `json:"category_id" validate:"required"`
	OwnerID        *int64               `json:"owner_id,omitempty"`
	Name           string               `json:"name" validate:"required,max=200"`
	Slug           string               `json:"slug,omitempty" validate:"max=200"`
	Description    string               `json:"description"`
	Price          decimal.Decimal      `json:"price"`
	DiscountPrice  *decimal.Decimal     `json:"discount_price,omitempty"`
	Website        *string              `json:"website,omitempty" validate:"omitempty,url"`
	AffiliateLink  *string              `json:"affiliate_link,omitempty" validate:"omitempty,url"`
	Image          *string              `json:"image,omitempty"`
	Specifications model.Specifications `json:"specifications,omitempty"`
	IsFeatured     bool                 `json:"is_featured"`
}

func (h *AdminHandler) CreateItem(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)

	var req CreateItemRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if req.Price.IsNegative() || (req.DiscountPrice != nil && req.DiscountPrice.IsNegative()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "price must not be negative",
		})
	}

	item, err := h.adminSvc.CreateItem(c.Context(), adminID, service.ItemInput{
		CategoryID:     req.CategoryID,
		OwnerID:        req.OwnerID,
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		Price:          req.Price,
		DiscountPrice:  req.DiscountPrice,
		Website:        req.Website,
		AffiliateLink:  req.AffiliateLink,
		Image:          req.Image,
		Specifications: req.Specifications,
		IsFeatured:     req.IsFeatured,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// --- Settings ---

func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)

	settings, err := h.adminSvc.GetSettings(c.Context(), adminID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"settings": settings})
}

type SetSettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value Amount `json:"value" validate:"required"`
}

// SetSetting overrides one of the reward or payout amounts
func (h *AdminHandler) SetSetting(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)

	var req SetSettingRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if err := h.adminSvc.SetSetting(c.Context(), adminID, req.Key, req.Value.String()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// --- Ban Management ---

type BanUserRequest struct {
	Reason   string `json:"reason"`
	Duration string `json:"duration,omitempty"`
}

// BanUser bans a user, permanently unless a duration such as "72h" is given
func (h *AdminHandler) BanUser(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)
	targetUserID, err := strconv.ParseInt(c.Params("user_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user_id",
		})
	}

	var req BanUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	var duration *time.Duration
	if req.Duration != "" {
		d, err := time.ParseDuration(req.Duration)
		if err != nil || d <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid duration",
			})
		}
		duration = &d
	}

	ban, err := h.adminSvc.BanUser(c.Context(), adminID, targetUserID, req.Reason, duration)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ban)
}

// UnbanUser unbans a user
func (h *AdminHandler) UnbanUser(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)
	targetUserID, err := strconv.ParseInt(c.Params("user_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user_id",
		})
	}

	if err := h.adminSvc.UnbanUser(c.Context(), adminID, targetUserID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ListBans lists all active bans
func (h *AdminHandler) ListBans(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	bans, err := h.adminSvc.ListBans(c.Context(), adminID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"bans": bans})
}

type GrantAdminRequest struct {
	UserID int64  `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=operator owner"`
}

// GrantAdmin adds an operator or owner
func (h *AdminHandler) GrantAdmin(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)

	var req GrantAdminRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if err := h.adminSvc.GrantAdmin(c.Context(), adminID, req.UserID, model.AdminRole(req.Role)); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// --- Admin Logs ---

// GetLogs retrieves admin action logs
func (h *AdminHandler) GetLogs(c *fiber.Ctx) error {
	adminID := middleware.GetAdminID(c)
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	logs, err := h.adminSvc.GetAdminLogs(c.Context(), adminID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"logs": logs})
}
