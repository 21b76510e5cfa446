package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusPaid       PayoutStatus = "paid"
	PayoutStatusRejected   PayoutStatus = "rejected"
)

var ErrInvalidTransition = errors.New("payout status transition not allowed")

// payoutTransitions lists the statuses reachable from each status.
// Paid is terminal.
var payoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutStatusPending:    {PayoutStatusProcessing, PayoutStatusPaid, PayoutStatusRejected},
	PayoutStatusProcessing: {PayoutStatusPending, PayoutStatusPaid, PayoutStatusRejected},
	PayoutStatusRejected:   {PayoutStatusPending, PayoutStatusProcessing},
	PayoutStatusPaid:       nil,
}

func ParsePayoutStatus(s string) (PayoutStatus, bool) {
	st := PayoutStatus(s)
	_, ok := payoutTransitions[st]
	return st, ok
}

func (s PayoutStatus) IsValid() bool {
	_, ok := payoutTransitions[s]
	return ok
}

func (s PayoutStatus) CanTransitionTo(to PayoutStatus) bool {
	for _, next := range payoutTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyPayoutTransition returns the balance delta caused by moving a payout of
// amount from one status to another. Entering rejected refunds the reserved
// amount; leaving rejected reserves it again. Moving to the same status is a
// no-op with zero delta.
func ApplyPayoutTransition(from, to PayoutStatus, amount decimal.Decimal) (decimal.Decimal, error) {
	if !from.IsValid() || !to.IsValid() {
		return decimal.Zero, ErrInvalidTransition
	}
	if from == to {
		return decimal.Zero, nil
	}
	if !from.CanTransitionTo(to) {
		return decimal.Zero, ErrInvalidTransition
	}
	switch {
	case to == PayoutStatusRejected:
		return amount, nil
	case from == PayoutStatusRejected:
		return amount.Neg(), nil
	}
	return decimal.Zero, nil
}

type PayoutRequest struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	BankName      string          `json:"bank_name" db:"bank_name"`
	AccountNumber string          `json:"account_number" db:"account_number"`
	AccountName   string          `json:"account_name" db:"account_name"`
	Status        PayoutStatus    `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// PayoutWithUser is the operator view of a payout request.
type PayoutWithUser struct {
	PayoutRequest
	Username string `json:"username" db:"username"`
}

type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Banks are the payout destinations accepted by the operator.
var Banks = []Bank{
	{Code: "access", Name: "Access Bank"},
	{Code: "ecobank", Name: "Ecobank Nigeria"},
	{Code: "fidelity", Name: "Fidelity Bank"},
	{Code: "firstbank", Name: "First Bank of Nigeria"},
	{Code: "gtbank", Name: "Guaranty Trust Bank (GTBank)"},
	{Code: "kuda", Name: "Kuda Bank"},
	{Code: "moniepoint", Name: "Moniepoint MFB"},
	{Code: "opay", Name: "Opay"},
	{Code: "palmpay", Name: "Palmpay"},
	{Code: "uba", Name: "United Bank for Africa (UBA)"},
	{Code: "zenith", Name: "Zenith Bank"},
}

func IsKnownBank(code string) bool {
	for _, b := range Banks {
		if b.Code == code {
			return true
		}
	}
	return false
}

// AccountNumberLength is the NUBAN account number length.
const AccountNumberLength = 10

func IsValidAccountNumber(s string) bool {
	if len(s) != AccountNumberLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
