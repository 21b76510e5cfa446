package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/yanex66/vouchly/internal/logger"
	"github.com/yanex66/vouchly/internal/metrics"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrReferralAlreadyExists = errors.New("referral already exists")
	ErrSelfReferral          = errors.New("you cannot refer yourself")
)

type ReferralService struct {
	repo     *repository.Repository
	settings *LedgerSettings
}

func NewReferralService(repo *repository.Repository, settings *LedgerSettings) *ReferralService {
	return &ReferralService{repo: repo, settings: settings}
}

// referrer resolves a referral code. An unknown code yields nil without error.
func (s *ReferralService) referrer(ctx context.Context, code string) (*model.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	user, err := s.repo.GetUserByUsername(ctx, code)
	if errors.Is(err, repository.ErrUserNotFound) {
		logger.Log.Debug("ignoring unknown referral code", zap.String("code", code))
		return nil, nil
	}
	return user, err
}

// RecordSignup credits the owner of code for the signup of referredID.
func (s *ReferralService) RecordSignup(ctx context.Context, code string, referredID int64) error {
	referrer, err := s.referrer(ctx, code)
	if err != nil || referrer == nil {
		return err
	}
	if referrer.ID == referredID {
		return ErrSelfReferral
	}

	reward := s.settings.SignupReward(ctx)
	err = s.repo.WithLedger(ctx, referrer.ID, func(ctx context.Context, lt *repository.LedgerTx) error {
		referral := &model.Referral{ReferrerID: referrer.ID, ReferredID: referredID, Reward: reward}
		if err := lt.CreateReferral(ctx, referral); err != nil {
			if errors.Is(err, repository.ErrReferralExists) {
				return ErrReferralAlreadyExists
			}
			return err
		}
		_, err := lt.Apply(ctx, model.Credit(model.LedgerKindSignupReward, reward, &referral.ID,
			fmt.Sprintf("Referral bonus for user #%d", referredID)))
		return err
	})
	metrics.ObserveLedger(string(model.LedgerKindSignupReward), err)
	if err != nil {
		return err
	}

	metrics.ReferralEvents.WithLabelValues("signup").Inc()
	logger.Log.Info("signup referral recorded",
		zap.Int64("referrer_id", referrer.ID), zap.Int64("referred_id", referredID), zap.String("reward", reward.String()))
	return nil
}

// RecordClick counts a click-through on item attributed to code. visitorID is
// zero for anonymous visitors. Clicks by the referrer themselves are ignored.
func (s *ReferralService) RecordClick(ctx context.Context, code string, item *model.Item, visitorID int64) error {
	referrer, err := s.referrer(ctx, code)
	if err != nil || referrer == nil {
		return err
	}
	if referrer.ID == visitorID {
		return nil
	}

	reward := s.settings.ClickReward(ctx)
	err = s.repo.WithLedger(ctx, referrer.ID, func(ctx context.Context, lt *repository.LedgerTx) error {
		ref, created, err := lt.RecordItemClick(ctx, referrer.ID, item.ID)
		if err != nil || !created {
			return err
		}
		_, err = lt.Apply(ctx, model.Credit(model.LedgerKindClickReward, reward, &ref.ID,
			"Referral click on "+item.Name))
		return err
	})
	if err != nil {
		return err
	}

	metrics.ReferralEvents.WithLabelValues("click").Inc()
	return nil
}

// RecordSale counts a confirmed sale on an item referral and credits the
// referrer with the sale reward.
func (s *ReferralService) RecordSale(ctx context.Context, itemReferralID uuid.UUID) (*model.ItemReferral, error) {
	existing, err := s.repo.GetItemReferral(ctx, itemReferralID)
	if err != nil {
		return nil, err
	}

	reward := s.settings.SaleReward(ctx)
	var updated *model.ItemReferral
	err = s.repo.WithLedger(ctx, existing.ReferrerID, func(ctx context.Context, lt *repository.LedgerTx) error {
		ref, err := lt.RecordItemSale(ctx, itemReferralID)
		if err != nil {
			return err
		}
		updated = ref
		_, err = lt.Apply(ctx, model.Credit(model.LedgerKindSaleReward, reward, &ref.ID, "Referral sale"))
		return err
	})
	metrics.ObserveLedger(string(model.LedgerKindSaleReward), err)
	if err != nil {
		return nil, err
	}

	metrics.ReferralEvents.WithLabelValues("sale").Inc()
	return updated, nil
}

func (s *ReferralService) GetReferralStats(ctx context.Context, userID int64) (*model.ReferralStats, error) {
	return s.repo.GetReferralStats(ctx, userID)
}

func (s *ReferralService) GetReferrals(ctx context.Context, userID int64) ([]model.ReferralWithUser, error) {
	return s.repo.GetReferralsByReferrer(ctx, userID)
}

func (s *ReferralService) GetItemReferrals(ctx context.Context, userID int64) ([]model.ItemReferralWithItem, error) {
	return s.repo.GetItemReferralsByReferrer(ctx, userID)
}

// ItemLink builds the affiliate link a user shares for an item.
func ItemLink(publicURL, itemSlug, username string) string {
	return strings.TrimRight(publicURL, "/") + "/buy/" + url.PathEscape(itemSlug) + "?ref=" + url.QueryEscape(username)
}

// SignupLink builds the registration link carrying a referral code.
func SignupLink(publicURL, username string) string {
	return strings.TrimRight(publicURL, "/") + "/api/register?ref=" + url.QueryEscape(username)
}
