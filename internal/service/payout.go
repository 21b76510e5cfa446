package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanex66/vouchly/internal/logger"
	"github.com/yanex66/vouchly/internal/metrics"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrBelowMinimumPayout   = errors.New("amount is below the minimum withdrawal")
	ErrUnknownBank          = errors.New("select a bank from the list")
	ErrInvalidAccountNumber = errors.New("account number must be exactly 10 digits")
	ErrAccountNameRequired  = errors.New("account name is required")
)

// PayoutNotifier tells operators about payout activity (implemented by telegram.Bot)
type PayoutNotifier interface {
	NotifyPayoutRequested(payout *model.PayoutRequest, username string) error
	NotifyPayoutStatus(payout *model.PayoutRequest, from model.PayoutStatus) error
}

type PayoutInput struct {
	Amount        string
	BankName      string
	AccountNumber string
	AccountName   string
}

// PayoutForm is what a user needs to fill in a payout request.
type PayoutForm struct {
	Balance            decimal.Decimal `json:"balance"`
	MinAmount          decimal.Decimal `json:"min_amount"`
	Banks              []model.Bank    `json:"banks"`
	SavedBankName      *string         `json:"saved_bank_name,omitempty"`
	SavedAccountNumber *string         `json:"saved_account_number,omitempty"`
	SavedAccountName   *string         `json:"saved_account_name,omitempty"`
}

type PayoutService struct {
	repo     *repository.Repository
	settings *LedgerSettings
	notifier PayoutNotifier
}

func NewPayoutService(repo *repository.Repository, settings *LedgerSettings) *PayoutService {
	return &PayoutService{repo: repo, settings: settings}
}

// SetNotifier sets the notifier for operator messages
func (s *PayoutService) SetNotifier(notifier PayoutNotifier) {
	s.notifier = notifier
}

func (s *PayoutService) GetForm(ctx context.Context, userID int64) (*PayoutForm, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PayoutForm{
		Balance:            profile.Balance,
		MinAmount:          s.settings.MinPayoutAmount(ctx),
		Banks:              model.Banks,
		SavedBankName:      profile.SavedBankName,
		SavedAccountNumber: profile.SavedAccountNumber,
		SavedAccountName:   profile.SavedAccountName,
	}, nil
}

// Submit reserves the amount from the balance and files a pending payout
// request. The bank details are remembered on the profile.
func (s *PayoutService) Submit(ctx context.Context, userID int64, in PayoutInput) (*model.PayoutRequest, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	bank := strings.TrimSpace(in.BankName)
	if !model.IsKnownBank(bank) {
		return nil, ErrUnknownBank
	}
	accountNumber := strings.TrimSpace(in.AccountNumber)
	if !model.IsValidAccountNumber(accountNumber) {
		return nil, ErrInvalidAccountNumber
	}
	accountName := strings.TrimSpace(in.AccountName)
	if accountName == "" {
		return nil, ErrAccountNameRequired
	}
	if minAmount := s.settings.MinPayoutAmount(ctx); amount.LessThan(minAmount) {
		return nil, fmt.Errorf("%w of %s", ErrBelowMinimumPayout, minAmount.StringFixed(2))
	}

	payout := &model.PayoutRequest{
		Amount:        amount,
		BankName:      bank,
		AccountNumber: accountNumber,
		AccountName:   accountName,
		Status:        model.PayoutStatusPending,
	}
	err = s.repo.WithLedger(ctx, userID, func(ctx context.Context, lt *repository.LedgerTx) error {
		if amount.GreaterThan(lt.Profile.Balance) {
			return ErrInsufficientBalance
		}
		if err := lt.CreatePayout(ctx, payout); err != nil {
			return err
		}
		_, err := lt.Apply(ctx, model.Movement{
			Kind:         model.LedgerKindPayoutReserve,
			BalanceDelta: amount.Neg(),
			ReferenceID:  &payout.ID,
			Description:  "Payout request to " + bank,
		})
		if err != nil {
			return err
		}
		return lt.SaveBankDetails(ctx, bank, accountNumber, accountName)
	})
	metrics.ObserveLedger(string(model.LedgerKindPayoutReserve), err)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		username := ""
		if user, err := s.repo.GetUser(ctx, userID); err == nil {
			username = user.Username
		}
		if err := s.notifier.NotifyPayoutRequested(payout, username); err != nil {
			logger.Log.Warn("failed to notify payout request", zap.String("payout_id", payout.ID.String()), zap.Error(err))
		}
	}
	return payout, nil
}

// Transition moves a payout to status to. The balance effect is derived from
// the status stored in the database, read under lock, so repeating a
// transition has no further effect.
func (s *PayoutService) Transition(ctx context.Context, id uuid.UUID, to model.PayoutStatus) (*model.PayoutRequest, model.PayoutStatus, error) {
	if !to.IsValid() {
		return nil, "", model.ErrInvalidTransition
	}
	existing, err := s.repo.GetPayout(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var (
		payout *model.PayoutRequest
		from   model.PayoutStatus
	)
	err = s.repo.WithLedger(ctx, existing.UserID, func(ctx context.Context, lt *repository.LedgerTx) error {
		locked, err := lt.LockPayout(ctx, id)
		if err != nil {
			return err
		}
		payout, from = locked, locked.Status

		delta, err := model.ApplyPayoutTransition(from, to, locked.Amount)
		if err != nil {
			return err
		}
		if from == to {
			return nil
		}

		if !delta.IsZero() {
			m := model.Movement{
				Kind:         model.LedgerKindPayoutRefund,
				BalanceDelta: delta,
				ReferenceID:  &locked.ID,
				Description:  "Payout " + string(to),
			}
			if delta.IsNegative() {
				m.Kind = model.LedgerKindPayoutRedebit
			}
			_, err := lt.Apply(ctx, m)
			metrics.ObserveLedger(string(m.Kind), err)
			if errors.Is(err, model.ErrNegativeBalance) {
				return ErrInsufficientBalance
			}
			if err != nil {
				return err
			}
		}
		return lt.UpdatePayoutStatus(ctx, locked, to)
	})
	if err != nil {
		return nil, "", err
	}

	if from != to {
		metrics.PayoutTransitions.WithLabelValues(string(from), string(to)).Inc()
		if s.notifier != nil {
			if err := s.notifier.NotifyPayoutStatus(payout, from); err != nil {
				logger.Log.Warn("failed to notify payout status", zap.String("payout_id", payout.ID.String()), zap.Error(err))
			}
		}
	}
	return payout, from, nil
}

func (s *PayoutService) GetUserPayouts(ctx context.Context, userID int64) ([]model.PayoutRequest, error) {
	return s.repo.GetPayoutsByUser(ctx, userID)
}

func (s *PayoutService) ListPayouts(ctx context.Context, status *model.PayoutStatus, limit, offset int) ([]model.PayoutWithUser, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListPayouts(ctx, status, limit, offset)
}
