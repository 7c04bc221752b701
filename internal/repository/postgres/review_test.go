package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/OnlineStore/internal/domain"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

func TestReviewRepository_Create_DanglingAuthor(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)
	rv := &domain.Review{Rating: 5, Comment: "great", CreatedAt: time.Now().UTC(), AuthorID: 99, ProductID: 1}

	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(rv.Rating, rv.Comment, rv.CreatedAt, rv.AuthorID, rv.ProductID).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Create(context.Background(), rv)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Ratings(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("SELECT rating FROM reviews").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(5).AddRow(4).AddRow(3))

	ratings, err := repo.Ratings(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4, 3}, ratings)
	assert.Equal(t, 4.0, domain.AverageRating(ratings))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Ratings_None(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("SELECT rating FROM reviews").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}))

	ratings, err := repo.Ratings(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, ratings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Delete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectExec("DELETE FROM reviews").WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.True(t, apperrors.IsNotFound(repo.Delete(context.Background(), 3)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewDeliveryRepository(mock)
	d := &domain.Delivery{ID: 5, Address: "x", Cost: decimal.Zero, OrderID: 40}

	mock.ExpectExec("UPDATE deliveries").
		WithArgs(d.Address, d.Method, d.Cost, d.StartDate, d.EndDate, d.OrderID, d.UserID, d.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.True(t, apperrors.IsNotFound(repo.Update(context.Background(), d)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepository_Create_ValueTooLong(t *testing.T) {
	mock := newMock(t)
	repo := NewDeliveryRepository(mock)
	d := &domain.Delivery{Address: "1 Main St", Method: "Courier", Cost: decimal.Zero, OrderID: 40}

	mock.ExpectQuery("INSERT INTO deliveries").
		WithArgs(d.Address, d.Method, d.Cost, d.StartDate, d.EndDate, d.OrderID, d.UserID).
		WillReturnError(&pgconn.PgError{Code: "22001"})

	err := repo.Create(context.Background(), d)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepository_ListByUserID(t *testing.T) {
	mock := newMock(t)
	repo := NewDeliveryRepository(mock)
	recipient := int64(3)
	start := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM deliveries WHERE user_id = \$1`).
		WithArgs(recipient).
		WillReturnRows(pgxmock.NewRows([]string{"id", "address", "method", "delivery_cost", "start_date", "end_date", "order_id", "user_id"}).
			AddRow(int64(5), "1 Main St", "Courier", decimal.RequireFromString("8.00"), start, start, int64(40), &recipient))

	got, err := repo.ListByUserID(context.Background(), recipient)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, decimal.RequireFromString("8").Equal(got[0].Cost))
	assert.Equal(t, &recipient, got[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectExec("UPDATE categories").
		WithArgs("Kitchen", "", int64(8)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &domain.Category{ID: 8, Name: "Kitchen"})
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
