package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/yanex66/vouchly/internal/middleware"
	"github.com/yanex66/vouchly/internal/service"
)

type ReviewRequest struct {
	Rating  int    `json:"rating" form:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" form:"title" validate:"required,max=200"`
	Content string `json:"content" form:"content" validate:"required"`
}

func (h *Handler) AddReview(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	item, err := h.catalogSvc.GetItem(c.Context(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}

	var req ReviewRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	review, err := h.reviewSvc.Create(c.Context(), item, userID, service.ReviewInput{
		Rating:  req.Rating,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"review":  review,
		"message": "Review submitted successfully!",
	})
}

// DeleteReview removes a review written by the caller.
func (h *Handler) DeleteReview(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid review id",
		})
	}

	if err := h.reviewSvc.Delete(c.Context(), id, middleware.GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Review deleted successfully.",
	})
}
