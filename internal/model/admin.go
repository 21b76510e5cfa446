package model

import (
	"time"

	"github.com/google/uuid"
)

type AdminRole string

const (
	AdminRoleOperator AdminRole = "operator"
	AdminRoleOwner    AdminRole = "owner"
)

func (r AdminRole) IsValid() bool {
	return r == AdminRoleOperator || r == AdminRoleOwner
}

type Admin struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Role      AdminRole `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Ban blocks a user from posting reviews, referrals and payout requests.
type Ban struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Reason    *string    `json:"reason,omitempty" db:"reason"`
	BannedAt  time.Time  `json:"banned_at" db:"banned_at"`
	BannedBy  *int64     `json:"banned_by,omitempty" db:"banned_by"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	IsActive  bool       `json:"is_active" db:"is_active"`
}

// IsExpired checks if ban has expired
func (b *Ban) IsExpired(now time.Time) bool {
	if b.ExpiresAt == nil {
		return false
	}
	return now.After(*b.ExpiresAt)
}

type AdminLog struct {
	ID           uuid.UUID `json:"id" db:"id"`
	AdminID      int64     `json:"admin_id" db:"admin_id"`
	Action       string    `json:"action" db:"action"`
	TargetUserID *int64    `json:"target_user_id,omitempty" db:"target_user_id"`
	Details      []byte    `json:"details,omitempty" db:"details"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Admin action constants
const (
	AdminActionPayoutStatus    = "payout_status"
	AdminActionFeatureReview   = "feature_review"
	AdminActionUnfeatureReview = "unfeature_review"
	AdminActionRecordSale      = "record_sale"
	AdminActionSetSetting      = "set_setting"
	AdminActionCreateCategory  = "create_category"
	AdminActionCreateItem      = "create_item"
	AdminActionBanUser         = "ban_user"
	AdminActionUnbanUser       = "unban_user"
	AdminActionGrantAdmin      = "grant_admin"
)

// Setting keys
const (
	SettingSignupReward    = "referral_signup_reward"
	SettingClickReward     = "referral_click_reward"
	SettingSaleReward      = "referral_sale_reward"
	SettingMinPayoutAmount = "payout_min_amount"
)

var SettingKeys = []string{
	SettingSignupReward,
	SettingClickReward,
	SettingSaleReward,
	SettingMinPayoutAmount,
}
