package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/pkg/database"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

const reviewColumns = `id, rating, comment, created_at, author_id, product_id`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func scanReview(row rowScanner, extra ...any) (domain.Review, error) {
	var rv domain.Review
	dest := append([]any{
		&rv.ID,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
		&rv.AuthorID,
		&rv.ProductID,
	}, extra...)
	err := row.Scan(dest...)
	return rv, err
}

func reviewWriteError(err error, rv *domain.Review, op string) error {
	switch {
	case database.IsForeignKeyViolation(err):
		return apperrors.InvalidInput(fmt.Sprintf("author %d or product %d does not exist", rv.AuthorID, rv.ProductID))
	case database.IsCheckViolation(err):
		return apperrors.InvalidInput("rating must be between 1 and 5")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (rating, comment, created_at, author_id, product_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		rv.Rating,
		rv.Comment,
		rv.CreatedAt,
		rv.AuthorID,
		rv.ProductID,
	).Scan(&rv.ID)
	if err != nil {
		return reviewWriteError(err, rv, "insert review")
	}
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	rv, err := scanReview(r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &rv, nil
}

// List returns a page of reviews, newest first, with the total count.
func (r *ReviewRepository) List(ctx context.Context, page, perPage int) ([]domain.Review, int, error) {
	limit, offset := limitOffset(page, perPage)
	query := `
		SELECT ` + reviewColumns + `, count(*) OVER() AS total_count
		FROM reviews
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var total int
	reviews := make([]domain.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, total, nil
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE product_id = $1 ORDER BY created_at DESC, id DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list product reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

// Ratings returns the rating of every review on productID.
func (r *ReviewRepository) Ratings(ctx context.Context, productID int64) (ratings []int, err error) {
	query := `SELECT rating FROM reviews WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "reviews.ratings", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	ratings, err = pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("collect ratings: %w", err)
	}
	return ratings, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	query := `
		UPDATE reviews
		SET rating = $1, comment = $2, author_id = $3, product_id = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query, rv.Rating, rv.Comment, rv.AuthorID, rv.ProductID, rv.ID)
	if err != nil {
		return reviewWriteError(err, rv, "update review")
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", rv.ID)
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}
