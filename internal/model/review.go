package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ItemID     uuid.UUID `json:"item_id" db:"item_id"`
	AuthorID   int64     `json:"author_id" db:"author_id"`
	Rating     int       `json:"rating" db:"rating"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	IsFeatured bool      `json:"is_featured" db:"is_featured"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ReviewWithAuthor is a review joined with its author and item names.
type ReviewWithAuthor struct {
	Review
	AuthorUsername string `json:"author_username" db:"author_username"`
	ItemName       string `json:"item_name" db:"item_name"`
	ItemSlug       string `json:"item_slug" db:"item_slug"`
}
