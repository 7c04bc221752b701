package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/internal/repository"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

// ReviewService implements the business logic for product reviews.
type ReviewService struct {
	repo     repository.ReviewRepository
	producer EventPublisher
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, producer EventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// ReviewInput holds the writable fields of a review.
type ReviewInput struct {
	AuthorID  int64
	ProductID int64
	Rating    int
	Comment   string
}

func (in ReviewInput) validate() error {
	if !domain.IsValidRating(in.Rating) {
		return apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if utf8.RuneCountInString(in.Comment) > domain.MaxCommentLength {
		return apperrors.InvalidInput(fmt.Sprintf("comment must be at most %d characters", domain.MaxCommentLength))
	}
	if err := requirePositive("author_id", in.AuthorID); err != nil {
		return err
	}
	return requirePositive("product_id", in.ProductID)
}

// CreateReview records a review. A dangling author or product is reported
// by storage as invalid input.
func (s *ReviewService) CreateReview(ctx context.Context, input ReviewInput) (*domain.Review, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	review := &domain.Review{
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
		AuthorID:  input.AuthorID,
		ProductID: input.ProductID,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		logPublishFailure(ctx, s.logger, "review.created", err, slog.Int64("review_id", review.ID))
	}

	s.logger.InfoContext(ctx, "review created",
		slog.Int64("review_id", review.ID),
		slog.Int64("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)
	return review, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, page, perPage int) ([]domain.Review, int, error) {
	reviews, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

func (s *ReviewService) ListReviewsByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by product: %w", err)
	}
	return reviews, nil
}

// UpdateReview rewrites the review at pathID. inputID must match. A
// missing review is reported as found=false.
func (s *ReviewService) UpdateReview(ctx context.Context, pathID, inputID int64, input ReviewInput) (bool, error) {
	if pathID != inputID {
		return false, apperrors.InvalidInput("review ID mismatch")
	}
	if err := input.validate(); err != nil {
		return false, err
	}

	review := &domain.Review{
		ID:        pathID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		AuthorID:  input.AuthorID,
		ProductID: input.ProductID,
	}
	ok, err := found(s.repo.Update(ctx, review), "update review")
	if ok {
		s.logger.InfoContext(ctx, "review updated",
			slog.Int64("review_id", pathID),
			slog.Int("rating", review.Rating),
		)
	}
	return ok, err
}

func (s *ReviewService) DeleteReview(ctx context.Context, id int64) (bool, error) {
	ok, err := found(s.repo.Delete(ctx, id), "delete review")
	if ok {
		s.logger.InfoContext(ctx, "review deleted", slog.Int64("review_id", id))
	}
	return ok, err
}

// AverageRating returns the mean rating of a product, 0 when it has none.
func (s *ReviewService) AverageRating(ctx context.Context, productID int64) (float64, error) {
	ratings, err := s.repo.Ratings(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return domain.AverageRating(ratings), nil
}
