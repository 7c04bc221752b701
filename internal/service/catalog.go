package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/internal/repository"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

// CatalogService implements product and category operations.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	reviews    repository.ReviewRepository
	producer   EventPublisher
	logger     *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	reviews repository.ReviewRepository,
	producer EventPublisher,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		reviews:    reviews,
		producer:   producer,
		logger:     logger,
	}
}

// ProductInput holds the writable fields of a product. A nil CategoryIDs
// leaves the membership alone on update; an empty one clears it.
type ProductInput struct {
	Article     string
	Name        string
	Description string
	Price       decimal.Decimal
	MediaURLs   []string
	CategoryIDs []int64
}

func (in ProductInput) validate() error {
	switch {
	case in.Article == "":
		return apperrors.InvalidInput("article is required")
	case utf8.RuneCountInString(in.Article) > domain.MaxArticleLength:
		return apperrors.InvalidInput(fmt.Sprintf("article must be at most %d characters", domain.MaxArticleLength))
	case in.Name == "":
		return apperrors.InvalidInput("name is required")
	case utf8.RuneCountInString(in.Name) > domain.MaxProductNameLength:
		return apperrors.InvalidInput(fmt.Sprintf("name must be at most %d characters", domain.MaxProductNameLength))
	case utf8.RuneCountInString(in.Description) > domain.MaxDescriptionLength:
		return apperrors.InvalidInput(fmt.Sprintf("description must be at most %d characters", domain.MaxDescriptionLength))
	case in.Price.IsNegative():
		return apperrors.InvalidInput("price must not be negative")
	}
	return nil
}

// --- Products ---

// CreateProduct adds a product to the catalog together with its category
// memberships.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		Article:     input.Article,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		MediaURLs:   input.MediaURLs,
		CategoryIDs: input.CategoryIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.MediaURLs == nil {
		p.MediaURLs = []string{}
	}
	if p.CategoryIDs == nil {
		p.CategoryIDs = []int64{}
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", p.ID),
		slog.String("article", p.Article),
	)
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListProducts returns a page of products, optionally limited to a category.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// GetProductDetails returns the product with its categories, its reviews
// and the average of their ratings.
func (s *CatalogService) GetProductDetails(ctx context.Context, id int64) (*domain.ProductDetails, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	categories, err := s.categories.GetByIDs(ctx, p.CategoryIDs)
	if err != nil {
		return nil, fmt.Errorf("get product categories: %w", err)
	}

	reviews, err := s.reviews.ListByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product reviews: %w", err)
	}

	return &domain.ProductDetails{
		Product:       *p,
		Categories:    categories,
		Reviews:       reviews,
		AverageRating: domain.SummarizeReviews(id, reviews).AverageRating,
	}, nil
}

// UpdateProduct overwrites the product at pathID. inputID must match
// pathID. A missing product is reported as found=false.
func (s *CatalogService) UpdateProduct(ctx context.Context, pathID, inputID int64, input ProductInput) (bool, error) {
	if pathID != inputID {
		return false, apperrors.InvalidInput("product ID mismatch")
	}
	if err := input.validate(); err != nil {
		return false, err
	}

	p := &domain.Product{
		ID:          pathID,
		Article:     input.Article,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		MediaURLs:   input.MediaURLs,
		CategoryIDs: input.CategoryIDs,
		UpdatedAt:   time.Now().UTC(),
	}

	ok, err := found(s.products.Update(ctx, p), "update product")
	if !ok || err != nil {
		return ok, err
	}

	if err := s.producer.PublishProductUpdated(ctx, p); err != nil {
		logPublishFailure(ctx, s.logger, "product.updated", err, slog.Int64("product_id", p.ID))
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", p.ID),
		slog.String("price", p.Price.StringFixed(2)),
	)
	return true, nil
}

// SetProductCategories replaces the whole category set of a product.
func (s *CatalogService) SetProductCategories(ctx context.Context, productID int64, categoryIDs []int64) (bool, error) {
	if categoryIDs == nil {
		categoryIDs = []int64{}
	}
	ok, err := found(s.products.SetCategories(ctx, productID, categoryIDs), "set product categories")
	if ok {
		s.logger.InfoContext(ctx, "product categories replaced",
			slog.Int64("product_id", productID),
			slog.Int("categories", len(categoryIDs)),
		)
	}
	return ok, err
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	ok, err := found(s.products.Delete(ctx, id), "delete product")
	if ok {
		s.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))
	}
	return ok, err
}

// --- Categories ---

// CategoryInput holds the writable fields of a category.
type CategoryInput struct {
	Name        string
	Description string
}

func (in CategoryInput) validate() error {
	switch {
	case in.Name == "":
		return apperrors.InvalidInput("name is required")
	case utf8.RuneCountInString(in.Name) > domain.MaxCategoryNameLength:
		return apperrors.InvalidInput(fmt.Sprintf("name must be at most %d characters", domain.MaxCategoryNameLength))
	case utf8.RuneCountInString(in.Description) > domain.MaxCategoryDescriptionLength:
		return apperrors.InvalidInput(fmt.Sprintf("description must be at most %d characters", domain.MaxCategoryDescriptionLength))
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	c := &domain.Category{Name: input.Name, Description: input.Description}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created", slog.Int64("category_id", c.ID))
	return c, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListCategoryProducts returns a page of the products in a category. The
// category itself must exist.
func (s *CatalogService) ListCategoryProducts(ctx context.Context, categoryID int64, page, perPage int) ([]domain.Product, int, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, 0, fmt.Errorf("get category: %w", err)
	}
	return s.ListProducts(ctx, repository.ProductFilter{
		CategoryID: &categoryID,
		Page:       page,
		PerPage:    perPage,
	})
}

// UpdateCategory renames a category. A missing category is reported as
// found=false.
func (s *CatalogService) UpdateCategory(ctx context.Context, pathID, inputID int64, input CategoryInput) (bool, error) {
	if pathID != inputID {
		return false, apperrors.InvalidInput("category ID mismatch")
	}
	if err := input.validate(); err != nil {
		return false, err
	}

	c := &domain.Category{ID: pathID, Name: input.Name, Description: input.Description}
	ok, err := found(s.categories.Update(ctx, c), "update category")
	if ok {
		s.logger.InfoContext(ctx, "category updated", slog.Int64("category_id", c.ID))
	}
	return ok, err
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	ok, err := found(s.categories.Delete(ctx, id), "delete category")
	if ok {
		s.logger.InfoContext(ctx, "category deleted", slog.Int64("category_id", id))
	}
	return ok, err
}
