package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yanex66/vouchly/internal/metrics"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
)

var (
	ErrMalformedAmount     = errors.New("enter a valid amount with at most two decimal places")
	ErrNonPositiveAmount   = errors.New("amount must be greater than zero")
	ErrInsufficientTokens  = errors.New("insufficient token rewards")
	ErrInsufficientBalance = errors.New("insufficient funds")
)

// maxAmount is the first value that no longer fits NUMERIC(12,2).
var maxAmount = decimal.New(1, 10)

// ParseAmount parses a user supplied money amount. It does not accept more
// than two decimal places.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrMalformedAmount
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	if !amount.Equal(amount.Truncate(2)) || amount.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, ErrMalformedAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	return amount, nil
}

type LedgerService struct {
	repo *repository.Repository
}

func NewLedgerService(repo *repository.Repository) *LedgerService {
	return &LedgerService{repo: repo}
}

func (s *LedgerService) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// Redeem converts token rewards into spendable balance. The token check is
// made against the locked profile, so concurrent redemptions cannot overdraw.
func (s *LedgerService) Redeem(ctx context.Context, userID int64, amountText string) (*model.Profile, error) {
	amount, err := ParseAmount(amountText)
	if err != nil {
		return nil, err
	}

	var profile *model.Profile
	err = s.repo.WithLedger(ctx, userID, func(ctx context.Context, lt *repository.LedgerTx) error {
		if amount.GreaterThan(lt.Profile.TokenRewards) {
			return ErrInsufficientTokens
		}
		if _, err := lt.Apply(ctx, model.Redemption(amount)); err != nil {
			return err
		}
		profile = lt.Profile
		return nil
	})
	metrics.ObserveLedger(string(model.LedgerKindRedemption), err)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// TransactionPage clamps a history page request to what the listing serves.
func TransactionPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetTransactions returns ledger history
func (s *LedgerService) GetTransactions(ctx context.Context, userID int64, limit, offset int) ([]model.LedgerTransaction, error) {
	limit, offset = TransactionPage(limit, offset)
	return s.repo.GetLedgerTransactions(ctx, userID, limit, offset)
}
