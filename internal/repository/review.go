package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yanex66/vouchly/internal/model"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("review already exists for this item and author")
)

// featuredReviewLock is the advisory lock key serializing featured flag changes.
const featuredReviewLock = 4_815_162_342

func (r *Repository) HasReviewed(ctx context.Context, itemID uuid.UUID, authorID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM reviews WHERE item_id = $1 AND author_id = $2)",
		itemID, authorID)
	return exists, err
}

func (r *Repository) CreateReview(ctx context.Context, review *model.Review) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO reviews (item_id, author_id, rating, title, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_featured, created_at`,
		review.ItemID, review.AuthorID, review.Rating, review.Title, review.Content,
	).Scan(&review.ID, &review.IsFeatured, &review.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// DeleteReview removes a review written by authorID.
func (r *Repository) DeleteReview(ctx context.Context, id uuid.UUID, authorID int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = $1 AND author_id = $2", id, authorID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// SetFeaturedReview makes id the only featured review. Every other featured
// flag is cleared before the new one is set, inside one transaction.
func (r *Repository) SetFeaturedReview(ctx context.Context, id uuid.UUID) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", featuredReviewLock); err != nil {
			return fmt.Errorf("failed to acquire featured lock: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE reviews SET is_featured = FALSE WHERE is_featured AND id <> $1", id); err != nil {
			return fmt.Errorf("failed to clear featured reviews: %w", err)
		}
		res, err := tx.ExecContext(ctx, "UPDATE reviews SET is_featured = TRUE WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to feature review: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrReviewNotFound
		}
		return nil
	})
}

func (r *Repository) UnfeatureReview(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "UPDATE reviews SET is_featured = FALSE WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// GetFeaturedReview returns the featured review, or nil when none is set.
func (r *Repository) GetFeaturedReview(ctx context.Context) (*model.ReviewWithAuthor, error) {
	var review model.ReviewWithAuthor
	err := r.db.GetContext(ctx, &review, reviewWithAuthorQuery+" WHERE rv.is_featured LIMIT 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *Repository) GetReviewsByItem(ctx context.Context, itemID uuid.UUID) ([]model.ReviewWithAuthor, error) {
	var reviews []model.ReviewWithAuthor
	err := r.db.SelectContext(ctx, &reviews,
		reviewWithAuthorQuery+" WHERE rv.item_id = $1 ORDER BY rv.created_at DESC", itemID)
	return reviews, err
}

func (r *Repository) GetReviewsByAuthor(ctx context.Context, authorID int64) ([]model.ReviewWithAuthor, error) {
	var reviews []model.ReviewWithAuthor
	err := r.db.SelectContext(ctx, &reviews,
		reviewWithAuthorQuery+" WHERE rv.author_id = $1 ORDER BY rv.created_at DESC", authorID)
	return reviews, err
}

// GetAverageRating returns nil for an item without reviews.
func (r *Repository) GetAverageRating(ctx context.Context, itemID uuid.UUID) (*float64, error) {
	var avg sql.NullFloat64
	if err := r.db.GetContext(ctx, &avg, "SELECT AVG(rating)::float8 FROM reviews WHERE item_id = $1", itemID); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

const reviewWithAuthorQuery = `
	SELECT rv.*, u.username AS author_username, i.name AS item_name, i.slug AS item_slug
	FROM reviews rv
	INNER JOIN users u ON u.id = rv.author_id
	INNER JOIN items i ON i.id = rv.item_id`
