package service

import (
	"context"

	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
)

const dashboardTransactions = 20

type Dashboard struct {
	User          *model.User                  `json:"user"`
	Profile       *model.Profile               `json:"profile"`
	Reviews       []model.ReviewWithAuthor     `json:"reviews"`
	Referrals     []model.ReferralWithUser     `json:"referrals"`
	ItemReferrals []model.ItemReferralWithItem `json:"item_referrals"`
	ReferralStats *model.ReferralStats         `json:"referral_stats"`
	Payouts       []model.PayoutRequest        `json:"payouts"`
	Transactions  []model.LedgerTransaction    `json:"transactions"`
}

type DashboardService struct {
	repo *repository.Repository
}

func NewDashboardService(repo *repository.Repository) *DashboardService {
	return &DashboardService{repo: repo}
}

func (s *DashboardService) Get(ctx context.Context, userID int64) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.User, err = s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if d.Profile, err = s.repo.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	if d.Reviews, err = s.repo.GetReviewsByAuthor(ctx, userID); err != nil {
		return nil, err
	}
	if d.Referrals, err = s.repo.GetReferralsByReferrer(ctx, userID); err != nil {
		return nil, err
	}
	if d.ItemReferrals, err = s.repo.GetItemReferralsByReferrer(ctx, userID); err != nil {
		return nil, err
	}
	if d.ReferralStats, err = s.repo.GetReferralStats(ctx, userID); err != nil {
		return nil, err
	}
	if d.Payouts, err = s.repo.GetPayoutsByUser(ctx, userID); err != nil {
		return nil, err
	}
	if d.Transactions, err = s.repo.GetLedgerTransactions(ctx, userID, dashboardTransactions, 0); err != nil {
		return nil, err
	}
	return &d, nil
}
