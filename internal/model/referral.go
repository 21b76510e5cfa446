package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Referral links a referrer to a user who signed up through their code.
// A referred user has at most one referral.
type Referral struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ReferrerID int64           `json:"referrer_id" db:"referrer_id"`
	ReferredID int64           `json:"referred_id" db:"referred_id"`
	Reward     decimal.Decimal `json:"reward" db:"reward"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type ReferralWithUser struct {
	Referral
	ReferredUsername string `json:"referred_username" db:"referred_username"`
}

// ItemReferral counts click-throughs and sales a referrer brought to an item.
type ItemReferral struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ReferrerID int64     `json:"referrer_id" db:"referrer_id"`
	ItemID     uuid.UUID `json:"item_id" db:"item_id"`
	Clicks     int       `json:"clicks" db:"clicks"`
	Sales      int       `json:"sales" db:"sales"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type ItemReferralWithItem struct {
	ItemReferral
	ItemName string `json:"item_name" db:"item_name"`
	ItemSlug string `json:"item_slug" db:"item_slug"`
}

type ReferralStats struct {
	TotalReferrals int             `json:"total_referrals" db:"total_referrals"`
	TotalReward    decimal.Decimal `json:"total_reward" db:"total_reward"`
	TotalClicks    int             `json:"total_clicks" db:"total_clicks"`
	TotalSales     int             `json:"total_sales" db:"total_sales"`
}
