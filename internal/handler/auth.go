package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/yanex66/vouchly/internal/logger"
	"github.com/yanex66/vouchly/internal/service"
	"github.com/yanex66/vouchly/internal/session"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	Username        string `json:"username" form:"username" validate:"required,max=150"`
	Email           string `json:"email" form:"email" validate:"required,email,max=254"`
	Password        string `json:"password" form:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RegisterForm captures ?ref= into the session so that the signup which
// follows is attributed to the referrer.
func (h *Handler) RegisterForm(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	code, _ := sess.Get(session.ReferralKey).(string)
	if ref := strings.TrimSpace(c.Query("ref")); ref != "" {
		code = ref
		sess.Set(session.ReferralKey, ref)
		// Save releases the session; nothing may read it afterwards.
		if err := sess.Save(); err != nil {
			return respondError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"referral_code": code,
	})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return respondError(c, err)
	}
	code, _ := sess.Get(session.ReferralKey).(string)

	user, err := h.userSvc.Register(c.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, code)
	if err != nil {
		return respondError(c, err)
	}

	if code != "" {
		sess.Delete(session.ReferralKey)
		if err := sess.Save(); err != nil {
			logger.Log.Warn("failed to clear referral code", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"message": "Account created for " + user.Username + "! You can now login.",
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	sess, err := h.userSvc.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sess)
}
