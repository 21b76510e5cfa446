package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yanex66/vouchly/internal/model"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already registered")
)

func (r *Repository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE username = $1", username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts the user and its empty profile in one transaction.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO users (username, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at`,
			user.Username, user.Email, user.PasswordHash,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if constraint, ok := uniqueViolation(err); ok {
				if constraint == "users_email_key" {
					return ErrEmailTaken
				}
				return ErrUsernameTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO profiles (user_id, image) VALUES ($1, $2)",
			user.ID, model.DefaultProfileImage)
		if err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return nil
	})
}

func (r *Repository) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE user_id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) UpdateProfileImage(ctx context.Context, userID int64, image string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET image = $1, updated_at = NOW() WHERE user_id = $2",
		image, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// GetTopReviewers returns users with at least one review, most prolific first.
func (r *Repository) GetTopReviewers(ctx context.Context, limit int) ([]model.Reviewer, error) {
	var reviewers []model.Reviewer
	err := r.db.SelectContext(ctx, &reviewers, `
		SELECT u.id, u.username, COUNT(rv.id) AS num_reviews
		FROM users u
		INNER JOIN reviews rv ON rv.author_id = u.id
		GROUP BY u.id, u.username
		ORDER BY num_reviews DESC, u.id ASC
		LIMIT $1`, limit)
	return reviewers, err
}
