package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LedgerKind string

const (
	LedgerKindSignupReward  LedgerKind = "signup_reward"
	LedgerKindClickReward   LedgerKind = "click_reward"
	LedgerKindSaleReward    LedgerKind = "sale_reward"
	LedgerKindRedemption    LedgerKind = "redemption"
	LedgerKindPayoutReserve LedgerKind = "payout_reserve"
	LedgerKindPayoutRefund  LedgerKind = "payout_refund"
	LedgerKindPayoutRedebit LedgerKind = "payout_redebit"
)

// LedgerTransaction records one movement of value on a profile.
type LedgerTransaction struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       int64           `json:"user_id" db:"user_id"`
	Kind         LedgerKind      `json:"kind" db:"kind"`
	TokensDelta  decimal.Decimal `json:"tokens_delta" db:"tokens_delta"`
	BalanceDelta decimal.Decimal `json:"balance_delta" db:"balance_delta"`
	TokensAfter  decimal.Decimal `json:"tokens_after" db:"tokens_after"`
	BalanceAfter decimal.Decimal `json:"balance_after" db:"balance_after"`
	ReferenceID  *uuid.UUID      `json:"reference_id,omitempty" db:"reference_id"`
	Description  *string         `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

var (
	ErrNegativeTokens  = errors.New("token rewards would become negative")
	ErrNegativeBalance = errors.New("balance would become negative")
)

// Movement is a pending change to both ledger columns.
type Movement struct {
	Kind         LedgerKind
	TokensDelta  decimal.Decimal
	BalanceDelta decimal.Decimal
	ReferenceID  *uuid.UUID
	Description  string
}

// Apply returns the profile amounts after m, refusing to drive either below zero.
func (m Movement) Apply(p *Profile) (tokens, balance decimal.Decimal, err error) {
	tokens = p.TokenRewards.Add(m.TokensDelta)
	balance = p.Balance.Add(m.BalanceDelta)
	if tokens.IsNegative() {
		return p.TokenRewards, p.Balance, ErrNegativeTokens
	}
	if balance.IsNegative() {
		return p.TokenRewards, p.Balance, ErrNegativeBalance
	}
	return tokens, balance, nil
}

// IsZero reports whether m moves nothing.
func (m Movement) IsZero() bool {
	return m.TokensDelta.IsZero() && m.BalanceDelta.IsZero()
}

// Credit builds a token reward movement.
func Credit(kind LedgerKind, amount decimal.Decimal, ref *uuid.UUID, description string) Movement {
	return Movement{Kind: kind, TokensDelta: amount, ReferenceID: ref, Description: description}
}

// Redemption moves amount from token rewards into the spendable balance.
func Redemption(amount decimal.Decimal) Movement {
	return Movement{
		Kind:         LedgerKindRedemption,
		TokensDelta:  amount.Neg(),
		BalanceDelta: amount,
		Description:  "Redeemed " + amount.StringFixed(2) + " tokens",
	}
}
