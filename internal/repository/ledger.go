package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yanex66/vouchly/internal/model"
)

// LedgerTx is a transaction holding the row lock on one profile. All ledger
// movements and the records that justify them are written through it, so the
// check against the locked amounts and the write commit together.
type LedgerTx struct {
	tx      *sqlx.Tx
	Profile *model.Profile
}

// WithLedger locks the profile of userID with SELECT ... FOR UPDATE and runs
// fn. The transaction commits only when fn returns nil. Concurrent callers
// for the same user queue on the lock and see the committed amounts.
func (r *Repository) WithLedger(ctx context.Context, userID int64, fn func(ctx context.Context, lt *LedgerTx) error) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		var profile model.Profile
		err := tx.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE user_id = $1 FOR UPDATE", userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProfileNotFound
			}
			return fmt.Errorf("failed to lock profile: %w", err)
		}
		return fn(ctx, &LedgerTx{tx: tx, Profile: &profile})
	})
}

// Apply writes m to the locked profile and records it as a ledger transaction.
// A zero movement writes nothing and returns nil.
func (lt *LedgerTx) Apply(ctx context.Context, m model.Movement) (*model.LedgerTransaction, error) {
	if m.IsZero() {
		return nil, nil
	}

	tokens, balance, err := m.Apply(lt.Profile)
	if err != nil {
		return nil, err
	}

	_, err = lt.tx.ExecContext(ctx, `
		UPDATE profiles SET token_rewards = $1, balance = $2, updated_at = NOW()
		WHERE user_id = $3`,
		tokens, balance, lt.Profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update ledger: %w", err)
	}

	entry := &model.LedgerTransaction{
		UserID:       lt.Profile.UserID,
		Kind:         m.Kind,
		TokensDelta:  m.TokensDelta,
		BalanceDelta: m.BalanceDelta,
		TokensAfter:  tokens,
		BalanceAfter: balance,
		ReferenceID:  m.ReferenceID,
	}
	if m.Description != "" {
		desc := m.Description
		entry.Description = &desc
	}

	err = lt.tx.QueryRowxContext(ctx, `
		INSERT INTO ledger_transactions
			(user_id, kind, tokens_delta, balance_delta, tokens_after, balance_after, reference_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		entry.UserID, entry.Kind, entry.TokensDelta, entry.BalanceDelta,
		entry.TokensAfter, entry.BalanceAfter, entry.ReferenceID, entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger transaction: %w", err)
	}

	lt.Profile.TokenRewards = tokens
	lt.Profile.Balance = balance
	return entry, nil
}

// SaveBankDetails remembers the last payout destination on the profile.
func (lt *LedgerTx) SaveBankDetails(ctx context.Context, bankName, accountNumber, accountName string) error {
	_, err := lt.tx.ExecContext(ctx, `
		UPDATE profiles SET saved_bank_name = $1, saved_account_number = $2, saved_account_name = $3, updated_at = NOW()
		WHERE user_id = $4`,
		bankName, accountNumber, accountName, lt.Profile.UserID)
	if err != nil {
		return fmt.Errorf("failed to save bank details: %w", err)
	}
	lt.Profile.SavedBankName = &bankName
	lt.Profile.SavedAccountNumber = &accountNumber
	lt.Profile.SavedAccountName = &accountName
	return nil
}

// GetLedgerTransactions returns ledger history for a user, newest first.
func (r *Repository) GetLedgerTransactions(ctx context.Context, userID int64, limit, offset int) ([]model.LedgerTransaction, error) {
	var transactions []model.LedgerTransaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM ledger_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	return transactions, err
}
