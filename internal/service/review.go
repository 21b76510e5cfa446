package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
)

var (
	ErrAlreadyReviewed = errors.New("you have already reviewed this product")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidTitle    = errors.New("title is required and must be at most 200 characters")
	ErrContentRequired = errors.New("review content is required")
)

const maxReviewTitle = 200

type ReviewInput struct {
	Rating  int
	Title   string
	Content string
}

type ReviewService struct {
	repo *repository.Repository
}

func NewReviewService(repo *repository.Repository) *ReviewService {
	return &ReviewService{repo: repo}
}

func (s *ReviewService) Create(ctx context.Context, item *model.Item, authorID int64, in ReviewInput) (*model.Review, error) {
	if in.Rating < model.MinRating || in.Rating > model.MaxRating {
		return nil, ErrInvalidRating
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > maxReviewTitle {
		return nil, ErrInvalidTitle
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrContentRequired
	}

	reviewed, err := s.repo.HasReviewed(ctx, item.ID, authorID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, ErrAlreadyReviewed
	}

	review := &model.Review{
		ItemID:   item.ID,
		AuthorID: authorID,
		Rating:   in.Rating,
		Title:    title,
		Content:  content,
	}
	// A concurrent insert can still win between the check and here.
	if err := s.repo.CreateReview(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, id uuid.UUID, authorID int64) error {
	return s.repo.DeleteReview(ctx, id, authorID)
}

// Feature makes id the single featured review.
func (s *ReviewService) Feature(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetFeaturedReview(ctx, id)
}

func (s *ReviewService) Unfeature(ctx context.Context, id uuid.UUID) error {
	return s.repo.UnfeatureReview(ctx, id)
}

func (s *ReviewService) GetFeatured(ctx context.Context) (*model.ReviewWithAuthor, error) {
	return s.repo.GetFeaturedReview(ctx)
}

func (s *ReviewService) GetForItem(ctx context.Context, itemID uuid.UUID) ([]model.ReviewWithAuthor, *float64, error) {
	reviews, err := s.repo.GetReviewsByItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	avg, err := s.repo.GetAverageRating(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	return reviews, avg, nil
}

func (s *ReviewService) GetByAuthor(ctx context.Context, authorID int64) ([]model.ReviewWithAuthor, error) {
	return s.repo.GetReviewsByAuthor(ctx, authorID)
}
