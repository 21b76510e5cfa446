package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yanex66/vouchly/internal/config"
	"github.com/yanex66/vouchly/internal/logger"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
	"go.uber.org/zap"
)

// LedgerSettings resolves reward amounts and the payout minimum. A value in
// the settings table wins over the configured default.
type LedgerSettings struct {
	repo     *repository.Repository
	defaults config.LedgerConfig
}

func NewLedgerSettings(repo *repository.Repository, defaults config.LedgerConfig) *LedgerSettings {
	return &LedgerSettings{repo: repo, defaults: defaults}
}

func (s *LedgerSettings) SignupReward(ctx context.Context) decimal.Decimal {
	return s.get(ctx, model.SettingSignupReward, s.defaults.SignupReward)
}

func (s *LedgerSettings) ClickReward(ctx context.Context) decimal.Decimal {
	return s.get(ctx, model.SettingClickReward, s.defaults.ClickReward)
}

func (s *LedgerSettings) SaleReward(ctx context.Context) decimal.Decimal {
	return s.get(ctx, model.SettingSaleReward, s.defaults.SaleReward)
}

func (s *LedgerSettings) MinPayoutAmount(ctx context.Context) decimal.Decimal {
	return s.get(ctx, model.SettingMinPayoutAmount, s.defaults.MinPayoutAmount)
}

func (s *LedgerSettings) get(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	v, err := s.repo.GetSettingDecimal(ctx, key, fallback)
	if err != nil || v.IsNegative() {
		logger.Log.Warn("unusable setting, using default",
			zap.String("key", key), zap.String("default", fallback.String()), zap.Error(err))
		return fallback
	}
	return v
}
