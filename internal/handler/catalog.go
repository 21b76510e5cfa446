package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yanex66/vouchly/internal/logger"
	"github.com/yanex66/vouchly/internal/middleware"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/service"
	"go.uber.org/zap"
)

type ItemDetailResponse struct {
	Item         *model.Item              `json:"item"`
	Reviews      []model.ReviewWithAuthor `json:"reviews"`
	AvgRating    *float64                 `json:"avg_rating"`
	ReferralLink *string                  `json:"referral_link"`
}

func (h *Handler) Home(c *fiber.Ctx) error {
	feed, err := h.catalogSvc.Home(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

func (h *Handler) Categories(c *fiber.Ctx) error {
	categories, err := h.catalogSvc.Categories(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"categories": categories,
	})
}

func (h *Handler) CategoryDetail(c *fiber.Ctx) error {
	category, items, err := h.catalogSvc.CategoryDetail(c.Context(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"category": category,
		"items":    items,
	})
}

func (h *Handler) Search(c *fiber.Ctx) error {
	query := c.Query("query")
	results, err := h.catalogSvc.Search(c.Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"query":   query,
		"results": results,
	})
}

// ItemDetail includes the caller's referral link when authenticated.
func (h *Handler) ItemDetail(c *fiber.Ctx) error {
	item, err := h.catalogSvc.GetItem(c.Context(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	reviews, avg, err := h.reviewSvc.GetForItem(c.Context(), item.ID)
	if err != nil {
		return respondError(c, err)
	}

	resp := ItemDetailResponse{Item: item, Reviews: reviews, AvgRating: avg}
	if username := middleware.GetUsername(c); username != "" {
		link := service.ItemLink(h.cfg.Server.PublicURL, item.Slug, username)
		resp.ReferralLink = &link
	}
	return c.JSON(resp)
}

// Buy counts the referral click and sends the visitor to the affiliate link.
// Referral problems never block the redirect.
func (h *Handler) Buy(c *fiber.Ctx) error {
	item, err := h.catalogSvc.GetItem(c.Context(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}

	if ref := c.Query("ref"); ref != "" {
		if err := h.referralSvc.RecordClick(c.Context(), ref, item, middleware.GetUserID(c)); err != nil {
			logger.Log.Warn("referral click not recorded",
				zap.String("item", item.Slug), zap.String("ref", ref), zap.Error(err))
		}
	}

	destination := "/"
	if item.AffiliateLink != nil && *item.AffiliateLink != "" {
		destination = *item.AffiliateLink
	}
	return c.Redirect(destination, fiber.StatusFound)
}

var pages = map[string]string{
	"about":   "About Us",
	"contact": "Contact",
	"privacy": "Privacy Policy",
	"terms":   "Terms of Service",
}

func (h *Handler) Page(c *fiber.Ctx) error {
	name := c.Params("name")
	title, ok := pages[name]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "page not found",
		})
	}
	return c.JSON(fiber.Map{
		"name":  name,
		"title": title,
	})
}
