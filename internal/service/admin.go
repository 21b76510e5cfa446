package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
)

var (
	ErrNotAdmin       = errors.New("user is not an admin")
	ErrNotOwner       = errors.New("only owners can manage admins")
	ErrInvalidRole    = errors.New("role must be operator or owner")
	ErrUserNotFound   = errors.New("user not found")
	ErrAlreadyBanned  = errors.New("user is already banned")
	ErrNotBanned      = errors.New("user is not banned")
	ErrUnknownSetting = errors.New("unknown setting")
	ErrInvalidSetting = errors.New("setting must be a non-negative amount")
)

type AdminService struct {
	repo        *repository.Repository
	payoutSvc   *PayoutService
	reviewSvc   *ReviewService
	referralSvc *ReferralService
	catalogSvc  *CatalogService
}

func NewAdminService(repo *repository.Repository) *AdminService {
	return &AdminService{repo: repo}
}

// SetPayoutService sets the payout service (to avoid circular deps)
func (s *AdminService) SetPayoutService(payoutSvc *PayoutService) {
	s.payoutSvc = payoutSvc
}

func (s *AdminService) SetReviewService(reviewSvc *ReviewService) {
	s.reviewSvc = reviewSvc
}

func (s *AdminService) SetReferralService(referralSvc *ReferralService) {
	s.referralSvc = referralSvc
}

func (s *AdminService) SetCatalogService(catalogSvc *CatalogService) {
	s.catalogSvc = catalogSvc
}

// IsAdmin checks if user is an admin
func (s *AdminService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return s.repo.IsAdmin(ctx, userID)
}

func (s *AdminService) GetAdmin(ctx context.Context, userID int64) (*model.Admin, error) {
	return s.repo.GetAdmin(ctx, userID)
}

func (s *AdminService) requireAdmin(ctx context.Context, adminID int64) error {
	ok, err := s.IsAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAdmin
	}
	return nil
}

// GrantAdmin gives targetUserID admin rights. Only owners may do this.
func (s *AdminService) GrantAdmin(ctx context.Context, adminID, targetUserID int64, role model.AdminRole) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	admin, err := s.GetAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotAdmin
	}
	if admin.Role != model.AdminRoleOwner {
		return ErrNotOwner
	}
	if _, err := s.repo.GetUser(ctx, targetUserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.repo.CreateAdmin(ctx, targetUserID, role); err != nil {
		return err
	}
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionGrantAdmin, &targetUserID, map[string]interface{}{
		"role": role,
	})
	return nil
}

// --- Payouts ---

func (s *AdminService) ListPayouts(ctx context.Context, adminID int64, status *model.PayoutStatus, limit, offset int) ([]model.PayoutWithUser, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.payoutSvc.ListPayouts(ctx, status, limit, offset)
}

// TransitionPayout applies a status change and records it in the audit log.
func (s *AdminService) TransitionPayout(ctx context.Context, adminID int64, payoutID uuid.UUID, to model.PayoutStatus) (*model.PayoutRequest, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	payout, from, err := s.payoutSvc.Transition(ctx, payoutID, to)
	if err != nil {
		return nil, err
	}

	if from != to {
		_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionPayoutStatus, &payout.UserID, map[string]interface{}{
			"payout_id": payout.ID,
			"from":      from,
			"to":        to,
			"amount":    payout.Amount,
		})
	}
	return payout, nil
}

// --- Reviews ---

func (s *AdminService) FeatureReview(ctx context.Context, adminID int64, reviewID uuid.UUID) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if err := s.reviewSvc.Feature(ctx, reviewID); err != nil {
		return err
	}
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionFeatureReview, nil, map[string]interface{}{
		"review_id": reviewID,
	})
	return nil
}

func (s *AdminService) UnfeatureReview(ctx context.Context, adminID int64, reviewID uuid.UUID) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if err := s.reviewSvc.Unfeature(ctx, reviewID); err != nil {
		return err
	}
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionUnfeatureReview, nil, map[string]interface{}{
		"review_id": reviewID,
	})
	return nil
}

// --- Referrals ---

func (s *AdminService) RecordSale(ctx context.Context, adminID int64, itemReferralID uuid.UUID) (*model.ItemReferral, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	ref, err := s.referralSvc.RecordSale(ctx, itemReferralID)
	if err != nil {
		return nil, err
	}
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionRecordSale, &ref.ReferrerID, map[string]interface{}{
		"item_referral_id": ref.ID,
		"sales":            ref.Sales,
	})
	return ref, nil
}

// --- Catalog ---

func (s *AdminService) CreateCategory(ctx context.Context, adminID int64, in CategoryInput) (*model.Category, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	category, err := s.catalogSvc.CreateCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionCreateCategory, nil, map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return category, nil
}

func (s *AdminService) CreateItem(ctx context.Context, adminID int64, in ItemInput) (*model.Item, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	item, err := s.catalogSvc.CreateItem(ctx, in)
	if err != nil {
		return nil, err
	}
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionCreateItem, nil, map[string]interface{}{
		"item_id": item.ID,
		"slug":    item.Slug,
	})
	return item, nil
}

// --- Bans ---

func (s *AdminService) BanUser(ctx context.Context, adminID, targetUserID int64, reason string, duration *time.Duration) (*model.Ban, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUser(ctx, targetUserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if banned, err := s.repo.IsUserBanned(ctx, targetUserID); err != nil {
		return nil, err
	} else if banned {
		return nil, ErrAlreadyBanned
	}

	ban := &model.Ban{UserID: targetUserID, BannedBy: &adminID}
	if reason != "" {
		ban.Reason = &reason
	}
	if duration != nil {
		expires := time.Now().Add(*duration)
		ban.ExpiresAt = &expires
	}
	if err := s.repo.BanUser(ctx, ban); err != nil {
		return nil, err
	}

	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionBanUser, &targetUserID, map[string]interface{}{
		"reason":     reason,
		"expires_at": ban.ExpiresAt,
	})
	return ban, nil
}

func (s *AdminService) UnbanUser(ctx context.Context, adminID, targetUserID int64) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if err := s.repo.UnbanUser(ctx, targetUserID); err != nil {
		if errors.Is(err, repository.ErrBanNotFound) {
			return ErrNotBanned
		}
		return err
	}
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionUnbanUser, &targetUserID, nil)
	return nil
}

func (s *AdminService) IsUserBanned(ctx context.Context, userID int64) (bool, error) {
	return s.repo.IsUserBanned(ctx, userID)
}

func (s *AdminService) ListBans(ctx context.Context, adminID int64, limit, offset int) ([]model.Ban, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListBans(ctx, limit, offset)
}

// --- Logs & settings ---

func (s *AdminService) GetAdminLogs(ctx context.Context, adminID int64, limit, offset int) ([]model.AdminLog, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.GetAdminLogs(ctx, limit, offset)
}

func (s *AdminService) GetSettings(ctx context.Context, adminID int64) (map[string]string, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.repo.ListSettings(ctx)
}

// SetSetting overrides one of the ledger constants.
func (s *AdminService) SetSetting(ctx context.Context, adminID int64, key, value string) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if !isSettingKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	v, err := decimal.NewFromString(value)
	if err != nil || v.IsNegative() || v.Exponent() < -2 {
		return ErrInvalidSetting
	}
	if err := s.repo.PutSetting(ctx, key, v.StringFixed(2)); err != nil {
		return err
	}
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionSetSetting, nil, map[string]interface{}{
		"key":   key,
		"value": v.StringFixed(2),
	})
	return nil
}

func isSettingKey(key string) bool {
	for _, k := range model.SettingKeys {
		if k == key {
			return true
		}
	}
	return false
}
