package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yanex66/vouchly/internal/model"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrSlugTaken        = errors.New("slug already in use")
)

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	err := r.db.GetContext(ctx, &category, "SELECT * FROM categories WHERE slug = $1", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	err := r.db.GetContext(ctx, &category, "SELECT * FROM categories WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *Repository) GetRootCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.SelectContext(ctx, &categories,
		"SELECT * FROM categories WHERE parent_id IS NULL ORDER BY name ASC")
	return categories, err
}

func (r *Repository) GetChildCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.SelectContext(ctx, &categories,
		"SELECT * FROM categories WHERE parent_id IS NOT NULL ORDER BY name ASC")
	return categories, err
}

func (r *Repository) CreateCategory(ctx context.Context, category *model.Category) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO categories (name, slug, parent_id, icon)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		category.Name, category.Slug, category.ParentID, category.Icon,
	).Scan(&category.ID)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *Repository) GetItemBySlug(ctx context.Context, slug string) (*model.Item, error) {
	var item model.Item
	err := r.db.GetContext(ctx, &item, "SELECT * FROM items WHERE slug = $1", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *model.Item) error {
	if item.Specifications == nil {
		item.Specifications = model.Specifications{}
	}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO items (category_id, owner_id, name, slug, description, price, discount_price,
			website, affiliate_link, image, specifications, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		item.CategoryID, item.OwnerID, item.Name, item.Slug, item.Description, item.Price, item.DiscountPrice,
		item.Website, item.AffiliateLink, item.Image, item.Specifications, item.IsFeatured,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (r *Repository) GetItemsByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	err := r.db.SelectContext(ctx, &items,
		"SELECT * FROM items WHERE category_id = $1 ORDER BY created_at DESC", categoryID)
	return items, err
}

func (r *Repository) GetFeaturedItems(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := r.db.SelectContext(ctx, &items,
		"SELECT * FROM items WHERE is_featured ORDER BY created_at DESC")
	return items, err
}

func (r *Repository) GetLatestItems(ctx context.Context, limit int) ([]model.Item, error) {
	var items []model.Item
	err := r.db.SelectContext(ctx, &items,
		"SELECT * FROM items ORDER BY created_at DESC LIMIT $1", limit)
	return items, err
}

// GetTopRatedItems orders by average rating; unreviewed items sort last.
func (r *Repository) GetTopRatedItems(ctx context.Context, limit int) ([]model.RatedItem, error) {
	var items []model.RatedItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT i.*, AVG(rv.rating)::float8 AS avg_rating
		FROM items i
		LEFT JOIN reviews rv ON rv.item_id = i.id
		GROUP BY i.id
		ORDER BY avg_rating DESC NULLS LAST, i.created_at DESC
		LIMIT $1`, limit)
	return items, err
}

// SearchItems matches query against item name, description and category name.
func (r *Repository) SearchItems(ctx context.Context, query string, limit int) ([]model.Item, error) {
	var items []model.Item
	pattern := "%" + likeEscaper.Replace(query) + "%"
	err := r.db.SelectContext(ctx, &items, `
		SELECT i.* FROM items i
		INNER JOIN categories c ON c.id = i.category_id
		WHERE i.name ILIKE $1 OR i.description ILIKE $1 OR c.name ILIKE $1
		ORDER BY i.created_at DESC
		LIMIT $2`, pattern, limit)
	return items, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
