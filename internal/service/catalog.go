package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
)

var (
	ErrEmptyName = errors.New("name is required")
	ErrEmptySlug = errors.New("slug cannot be derived from name")
)

const (
	homeSectionSize = 4
	searchLimit     = 50
)

type HomeFeed struct {
	HeroItems         []model.Item            `json:"hero_items"`
	TopRated          []model.RatedItem       `json:"top_rated"`
	LatestItems       []model.Item            `json:"latest_items"`
	FeaturedReviewers []model.Reviewer        `json:"featured_reviewers"`
	FeaturedReview    *model.ReviewWithAuthor `json:"featured_review"`
}

type CategoryInput struct {
	Name     string
	Slug     string
	ParentID *uuid.UUID
	Icon     *string
}

type ItemInput struct {
	CategoryID     uuid.UUID
	OwnerID        *int64
	Name           string
	Slug           string
	Description    string
	Price          decimal.Decimal
	DiscountPrice  *decimal.Decimal
	Website        *string
	AffiliateLink  *string
	Image          *string
	Specifications model.Specifications
	IsFeatured     bool
}

type CatalogService struct {
	repo *repository.Repository
}

func NewCatalogService(repo *repository.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) Home(ctx context.Context) (*HomeFeed, error) {
	var (
		feed HomeFeed
		err  error
	)
	if feed.HeroItems, err = s.repo.GetFeaturedItems(ctx); err != nil {
		return nil, err
	}
	if feed.TopRated, err = s.repo.GetTopRatedItems(ctx, homeSectionSize); err != nil {
		return nil, err
	}
	if feed.LatestItems, err = s.repo.GetLatestItems(ctx, homeSectionSize); err != nil {
		return nil, err
	}
	if feed.FeaturedReviewers, err = s.repo.GetTopReviewers(ctx, homeSectionSize); err != nil {
		return nil, err
	}
	if feed.FeaturedReview, err = s.repo.GetFeaturedReview(ctx); err != nil {
		return nil, err
	}
	return &feed, nil
}

// Categories returns the root categories with their direct children.
func (s *CatalogService) Categories(ctx context.Context) ([]model.CategoryTree, error) {
	roots, err := s.repo.GetRootCategories(ctx)
	if err != nil {
		return nil, err
	}
	children, err := s.repo.GetChildCategories(ctx)
	if err != nil {
		return nil, err
	}

	byParent := make(map[uuid.UUID][]model.Category)
	for _, c := range children {
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	trees := make([]model.CategoryTree, 0, len(roots))
	for _, root := range roots {
		kids := byParent[root.ID]
		if kids == nil {
			kids = []model.Category{}
		}
		trees = append(trees, model.CategoryTree{Category: root, Children: kids})
	}
	return trees, nil
}

func (s *CatalogService) CategoryDetail(ctx context.Context, slug string) (*model.Category, []model.Item, error) {
	category, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.GetItemsByCategory(ctx, category.ID)
	if err != nil {
		return nil, nil, err
	}
	return category, items, nil
}

func (s *CatalogService) GetItem(ctx context.Context, slug string) (*model.Item, error) {
	return s.repo.GetItemBySlug(ctx, slug)
}

// Search returns nothing for an empty query.
func (s *CatalogService) Search(ctx context.Context, query string) ([]model.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Item{}, nil
	}
	return s.repo.SearchItems(ctx, query, searchLimit)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	slug, err := deriveSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		if _, err := s.repo.GetCategory(ctx, *in.ParentID); err != nil {
			return nil, err
		}
	}

	category := &model.Category{Name: name, Slug: slug, ParentID: in.ParentID, Icon: in.Icon}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) CreateItem(ctx context.Context, in ItemInput) (*model.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	slug, err := deriveSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	item := &model.Item{
		CategoryID:     in.CategoryID,
		OwnerID:        in.OwnerID,
		Name:           name,
		Slug:           slug,
		Description:    in.Description,
		Price:          in.Price,
		DiscountPrice:  in.DiscountPrice,
		Website:        in.Website,
		AffiliateLink:  in.AffiliateLink,
		Image:          in.Image,
		Specifications: in.Specifications,
		IsFeatured:     in.IsFeatured,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func deriveSlug(slug, name string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = name
	}
	slug = model.Slugify(slug)
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}
