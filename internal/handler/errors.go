package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/yanex66/vouchly/internal/logger"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
	"github.com/yanex66/vouchly/internal/service"
	"go.uber.org/zap"
)

var badRequestErrors = []error{
	service.ErrMalformedAmount,
	service.ErrNonPositiveAmount,
	service.ErrInsufficientTokens,
	service.ErrInsufficientBalance,
	service.ErrBelowMinimumPayout,
	service.ErrUnknownBank,
	service.ErrInvalidAccountNumber,
	service.ErrAccountNameRequired,
	service.ErrInvalidRating,
	service.ErrInvalidTitle,
	service.ErrContentRequired,
	service.ErrInvalidUsername,
	service.ErrWeakPassword,
	service.ErrInvalidImage,
	service.ErrEmptyName,
	service.ErrEmptySlug,
	service.ErrUnknownSetting,
	service.ErrInvalidSetting,
	service.ErrInvalidRole,
	model.ErrInvalidTransition,
}

var conflictErrors = []error{
	service.ErrAlreadyReviewed,
	service.ErrAlreadyBanned,
	repository.ErrUsernameTaken,
	repository.ErrEmailTaken,
	repository.ErrSlugTaken,
}

var notFoundErrors = []error{
	repository.ErrUserNotFound,
	repository.ErrProfileNotFound,
	repository.ErrItemNotFound,
	repository.ErrCategoryNotFound,
	repository.ErrReviewNotFound,
	repository.ErrPayoutNotFound,
	repository.ErrItemReferralNotFound,
	service.ErrUserNotFound,
	service.ErrNotBanned,
}

func errorStatus(err error) int {
	switch {
	case isAny(err, badRequestErrors):
		return fiber.StatusBadRequest
	case isAny(err, conflictErrors):
		return fiber.StatusConflict
	case isAny(err, notFoundErrors):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotAdmin), errors.Is(err, service.ErrNotOwner):
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError renders err with its status. Internal errors are logged and
// hidden from the client.
func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
		msg = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// parseBody decodes the request body into req and validates its tags. It
// reports false after it has written a 400 response.
func (h *Handler) parseBody(c *fiber.Ctx, req interface{}) (bool, error) {
	return parseAndValidate(c, h.validate, req)
}

func parseAndValidate(c *fiber.Ctx, validate *validator.Validate, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "validation failed",
				"fields": fields,
			})
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return true, nil
}
