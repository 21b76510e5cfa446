package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Profile carries the two-tier ledger of a user. Both amounts are kept
// non-negative; only the ledger operations in the service layer write them.
type Profile struct {
	UserID             int64           `json:"user_id" db:"user_id"`
	Image              string          `json:"image" db:"image"`
	TokenRewards       decimal.Decimal `json:"token_rewards" db:"token_rewards"`
	Balance            decimal.Decimal `json:"balance" db:"balance"`
	SavedBankName      *string         `json:"saved_bank_name,omitempty" db:"saved_bank_name"`
	SavedAccountNumber *string         `json:"saved_account_number,omitempty" db:"saved_account_number"`
	SavedAccountName   *string         `json:"saved_account_name,omitempty" db:"saved_account_name"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

const DefaultProfileImage = "default.jpg"

// Reviewer is a user ranked by number of reviews written.
type Reviewer struct {
	ID         int64  `json:"id" db:"id"`
	Username   string `json:"username" db:"username"`
	NumReviews int    `json:"num_reviews" db:"num_reviews"`
}
