package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yanex66/vouchly/internal/model"
)

var ErrPayoutNotFound = errors.New("payout request not found")

// CreatePayout inserts a payout request for the locked profile.
func (lt *LedgerTx) CreatePayout(ctx context.Context, payout *model.PayoutRequest) error {
	payout.UserID = lt.Profile.UserID
	err := lt.tx.QueryRowxContext(ctx, `
		INSERT INTO payout_requests (user_id, amount, bank_name, account_number, account_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		payout.UserID, payout.Amount, payout.BankName, payout.AccountNumber, payout.AccountName, payout.Status,
	).Scan(&payout.ID, &payout.CreatedAt, &payout.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payout request: %w", err)
	}
	return nil
}

// LockPayout reads a payout request of the locked profile with FOR UPDATE.
// The returned status is the persisted one.
func (lt *LedgerTx) LockPayout(ctx context.Context, id uuid.UUID) (*model.PayoutRequest, error) {
	var payout model.PayoutRequest
	err := lt.tx.GetContext(ctx, &payout,
		"SELECT * FROM payout_requests WHERE id = $1 AND user_id = $2 FOR UPDATE",
		id, lt.Profile.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to lock payout request: %w", err)
	}
	return &payout, nil
}

func (lt *LedgerTx) UpdatePayoutStatus(ctx context.Context, payout *model.PayoutRequest, status model.PayoutStatus) error {
	err := lt.tx.QueryRowxContext(ctx, `
		UPDATE payout_requests SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at`,
		status, payout.ID,
	).Scan(&payout.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update payout status: %w", err)
	}
	payout.Status = status
	return nil
}

func (r *Repository) GetPayout(ctx context.Context, id uuid.UUID) (*model.PayoutRequest, error) {
	var payout model.PayoutRequest
	err := r.db.GetContext(ctx, &payout, "SELECT * FROM payout_requests WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	return &payout, nil
}

func (r *Repository) GetPayoutsByUser(ctx context.Context, userID int64) ([]model.PayoutRequest, error) {
	var payouts []model.PayoutRequest
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT * FROM payout_requests
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	return payouts, err
}

// ListPayouts lists payout requests for operators, optionally filtered by status.
func (r *Repository) ListPayouts(ctx context.Context, status *model.PayoutStatus, limit, offset int) ([]model.PayoutWithUser, error) {
	var payouts []model.PayoutWithUser
	query := `
		SELECT p.*, u.username
		FROM payout_requests p
		INNER JOIN users u ON u.id = p.user_id`
	args := []interface{}{limit, offset}
	if status != nil {
		query += " WHERE p.status = $3"
		args = append(args, *status)
	}
	query += " ORDER BY p.created_at ASC LIMIT $1 OFFSET $2"

	err := r.db.SelectContext(ctx, &payouts, query, args...)
	return payouts, err
}
