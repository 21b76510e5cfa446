package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/yanex66/vouchly/internal/model"
)

var ErrBanNotFound = errors.New("no active ban")

// IsAdmin checks if a user is an admin
func (r *Repository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins WHERE user_id = $1`, userID)
	return count > 0, err
}

// GetAdmin retrieves admin info by user ID
func (r *Repository) GetAdmin(ctx context.Context, userID int64) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.GetContext(ctx, &admin, `SELECT * FROM admins WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &admin, err
}

// CreateAdmin grants operator rights; granting twice is a no-op.
func (r *Repository) CreateAdmin(ctx context.Context, userID int64, role model.AdminRole) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins (user_id, role) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, role)
	return err
}

// BanUser bans a user by user_id
func (r *Repository) BanUser(ctx context.Context, ban *model.Ban) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO bans (user_id, reason, banned_by, expires_at, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, banned_at, is_active`,
		ban.UserID, ban.Reason, ban.BannedBy, ban.ExpiresAt,
	).Scan(&ban.ID, &ban.BannedAt, &ban.IsActive)
}

// UnbanUser lifts every active ban of a user
func (r *Repository) UnbanUser(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bans SET is_active = false
		WHERE user_id = $1 AND is_active = true`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBanNotFound
	}
	return nil
}

// IsUserBanned checks if a user has an active, unexpired ban. Expired bans
// are deactivated on the way.
func (r *Repository) IsUserBanned(ctx context.Context, userID int64) (bool, error) {
	var ban model.Ban
	err := r.db.GetContext(ctx, &ban, `
		SELECT * FROM bans
		WHERE user_id = $1 AND is_active = true
		ORDER BY banned_at DESC LIMIT 1`, userID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if ban.IsExpired(time.Now()) {
		_, _ = r.db.ExecContext(ctx, `UPDATE bans SET is_active = false WHERE id = $1`, ban.ID)
		return false, nil
	}
	return true, nil
}

// ListBans lists all active bans
func (r *Repository) ListBans(ctx context.Context, limit, offset int) ([]model.Ban, error) {
	var bans []model.Ban
	err := r.db.SelectContext(ctx, &bans, `
		SELECT * FROM bans
		WHERE is_active = true
		ORDER BY banned_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	return bans, err
}

// LogAdminAction stores an audit entry with JSON details
func (r *Repository) LogAdminAction(ctx context.Context, adminID int64, action string, targetUserID *int64, details interface{}) error {
	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return err
		}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_logs (admin_id, action, target_user_id, details)
		VALUES ($1, $2, $3, $4)`,
		adminID, action, targetUserID, detailsJSON)
	return err
}

// GetAdminLogs retrieves admin action logs
func (r *Repository) GetAdminLogs(ctx context.Context, limit, offset int) ([]model.AdminLog, error) {
	var logs []model.AdminLog
	err := r.db.SelectContext(ctx, &logs, `
		SELECT * FROM admin_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	return logs, err
}
