package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yanex66/vouchly/internal/model"
)

var (
	ErrReferralExists       = errors.New("referral already exists")
	ErrItemReferralNotFound = errors.New("item referral not found")
)

// CreateReferral inserts the signup referral. The referred user can be
// referred once; a second insert returns ErrReferralExists.
func (lt *LedgerTx) CreateReferral(ctx context.Context, referral *model.Referral) error {
	err := lt.tx.QueryRowxContext(ctx, `
		INSERT INTO referrals (referrer_id, referred_id, reward)
		VALUES ($1, $2, $3)
		ON CONFLICT (referred_id) DO NOTHING
		RETURNING id, created_at`,
		referral.ReferrerID, referral.ReferredID, referral.Reward,
	).Scan(&referral.ID, &referral.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReferralExists
		}
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

// RecordItemClick counts one click for (referrer, item), creating the row on
// the first click. created reports whether this click created it.
func (lt *LedgerTx) RecordItemClick(ctx context.Context, referrerID int64, itemID uuid.UUID) (ref *model.ItemReferral, created bool, err error) {
	var row struct {
		model.ItemReferral
		Inserted bool `db:"inserted"`
	}
	err = lt.tx.GetContext(ctx, &row, `
		INSERT INTO item_referrals (referrer_id, item_id, clicks)
		VALUES ($1, $2, 1)
		ON CONFLICT (referrer_id, item_id) DO UPDATE
			SET clicks = item_referrals.clicks + 1, updated_at = NOW()
		RETURNING *, (xmax = 0) AS inserted`,
		referrerID, itemID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record click: %w", err)
	}
	return &row.ItemReferral, row.Inserted, nil
}

// RecordItemSale increments the sale counter of an item referral owned by
// the locked profile.
func (lt *LedgerTx) RecordItemSale(ctx context.Context, id uuid.UUID) (*model.ItemReferral, error) {
	var ref model.ItemReferral
	err := lt.tx.GetContext(ctx, &ref, `
		UPDATE item_referrals SET sales = sales + 1, updated_at = NOW()
		WHERE id = $1 AND referrer_id = $2
		RETURNING *`,
		id, lt.Profile.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemReferralNotFound
		}
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}
	return &ref, nil
}

func (r *Repository) GetItemReferral(ctx context.Context, id uuid.UUID) (*model.ItemReferral, error) {
	var ref model.ItemReferral
	err := r.db.GetContext(ctx, &ref, "SELECT * FROM item_referrals WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemReferralNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *Repository) GetReferralsByReferrer(ctx context.Context, referrerID int64) ([]model.ReferralWithUser, error) {
	var referrals []model.ReferralWithUser
	err := r.db.SelectContext(ctx, &referrals, `
		SELECT r.*, u.username AS referred_username
		FROM referrals r
		INNER JOIN users u ON u.id = r.referred_id
		WHERE r.referrer_id = $1
		ORDER BY r.created_at DESC`, referrerID)
	return referrals, err
}

func (r *Repository) GetItemReferralsByReferrer(ctx context.Context, referrerID int64) ([]model.ItemReferralWithItem, error) {
	var referrals []model.ItemReferralWithItem
	err := r.db.SelectContext(ctx, &referrals, `
		SELECT ir.*, i.name AS item_name, i.slug AS item_slug
		FROM item_referrals ir
		INNER JOIN items i ON i.id = ir.item_id
		WHERE ir.referrer_id = $1
		ORDER BY ir.clicks DESC, ir.created_at DESC`, referrerID)
	return referrals, err
}

func (r *Repository) GetReferralStats(ctx context.Context, referrerID int64) (*model.ReferralStats, error) {
	var stats model.ReferralStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM referrals WHERE referrer_id = $1) AS total_referrals,
			(SELECT COALESCE(SUM(reward), 0) FROM referrals WHERE referrer_id = $1) AS total_reward,
			(SELECT COALESCE(SUM(clicks), 0) FROM item_referrals WHERE referrer_id = $1) AS total_clicks,
			(SELECT COALESCE(SUM(sales), 0) FROM item_referrals WHERE referrer_id = $1) AS total_sales`,
		referrerID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
