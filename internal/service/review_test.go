package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/OnlineStore/internal/domain"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

func newReviewFixture() (*mockReviewRepository, *mockPublisher, *ReviewService) {
	repo := new(mockReviewRepository)
	pub := new(mockPublisher)
	return repo, pub, NewReviewService(repo, pub, testLogger())
}

func TestCreateReview_Success(t *testing.T) {
	repo, pub, svc := newReviewFixture()
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(r *domain.Review) bool {
		return r.Rating == 4 && !r.CreatedAt.IsZero()
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Review).ID = 12
	}).Return(nil)
	pub.On("PublishReviewCreated", ctx, mock.Anything).Return(errors.New("broker down"))

	review, err := svc.CreateReview(ctx, ReviewInput{AuthorID: 1, ProductID: 2, Rating: 4, Comment: "solid"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), review.ID)
	pub.AssertExpectations(t)
}

func TestCreateReview_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input ReviewInput
		msg   string
	}{
		{"rating zero", ReviewInput{AuthorID: 1, ProductID: 2, Rating: 0}, "rating must be between 1 and 5"},
		{"rating six", ReviewInput{AuthorID: 1, ProductID: 2, Rating: 6}, "rating must be between 1 and 5"},
		{"long comment", ReviewInput{AuthorID: 1, ProductID: 2, Rating: 3, Comment: strings.Repeat("a", 2001)}, "comment"},
		{"no author", ReviewInput{ProductID: 2, Rating: 3}, "author_id"},
		{"negative product", ReviewInput{AuthorID: 1, ProductID: -1, Rating: 3}, "product_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, svc := newReviewFixture()
			_, err := svc.CreateReview(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.msg)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateReview_DanglingProduct(t *testing.T) {
	repo, _, svc := newReviewFixture()
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(apperrors.InvalidInput("author or product does not exist"))

	_, err := svc.CreateReview(ctx, ReviewInput{AuthorID: 1, ProductID: 999, Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateReview(t *testing.T) {
	repo, _, svc := newReviewFixture()
	ctx := context.Background()

	_, err := svc.UpdateReview(ctx, 1, 2, ReviewInput{AuthorID: 1, ProductID: 2, Rating: 3})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.UpdateReview(ctx, 1, 1, ReviewInput{AuthorID: 1, ProductID: 2, Rating: 9})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	repo.On("Update", ctx, mock.Anything).Return(apperrors.NotFound("review", int64(1)))
	ok, err := svc.UpdateReview(ctx, 1, 1, ReviewInput{AuthorID: 1, ProductID: 2, Rating: 3})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteReview_MissingIsSilent(t *testing.T) {
	repo, _, svc := newReviewFixture()
	ctx := context.Background()

	repo.On("Delete", ctx, int64(1)).Return(apperrors.NotFound("review", int64(1)))

	ok, err := svc.DeleteReview(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAverageRating(t *testing.T) {
	repo, _, svc := newReviewFixture()
	ctx := context.Background()

	repo.On("Ratings", ctx, int64(1)).Return([]int{5, 4, 3}, nil)
	repo.On("Ratings", ctx, int64(2)).Return([]int{}, nil)

	avg, err := svc.AverageRating(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)

	avg, err = svc.AverageRating(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, avg)
}
