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

const deliveryColumns = `id, address, method, delivery_cost, start_date, end_date, order_id, user_id`

// DeliveryRepository implements repository.DeliveryRepository using PostgreSQL.
type DeliveryRepository struct {
	pool database.DBTX
}

// NewDeliveryRepository creates a new PostgreSQL-backed delivery repository.
func NewDeliveryRepository(pool database.DBTX) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

func scanDelivery(row rowScanner) (domain.Delivery, error) {
	var d domain.Delivery
	err := row.Scan(
		&d.ID,
		&d.Address,
		&d.Method,
		&d.Cost,
		&d.StartDate,
		&d.EndDate,
		&d.OrderID,
		&d.UserID,
	)
	return d, err
}

// insertDelivery is shared with OrderRepository.AttachDelivery so both run
// the same statement, inside or outside a transaction.
func insertDelivery(ctx context.Context, q database.DBTX, d *domain.Delivery) error {
	query := `
		INSERT INTO deliveries (address, method, delivery_cost, start_date, end_date, order_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := q.QueryRow(ctx, query,
		d.Address,
		d.Method,
		d.Cost,
		d.StartDate,
		d.EndDate,
		d.OrderID,
		d.UserID,
	).Scan(&d.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("order %d or recipient does not exist", d.OrderID))
		}
		if database.IsStringTooLong(err) {
			return apperrors.InvalidInput("delivery address or method is too long")
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (r *DeliveryRepository) Create(ctx context.Context, d *domain.Delivery) error {
	return insertDelivery(ctx, r.pool, d)
}

func (r *DeliveryRepository) GetByID(ctx context.Context, id int64) (*domain.Delivery, error) {
	d, err := scanDelivery(r.pool.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("delivery", id)
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return &d, nil
}

func (r *DeliveryRepository) List(ctx context.Context) ([]domain.Delivery, error) {
	return r.query(ctx, `SELECT `+deliveryColumns+` FROM deliveries ORDER BY id`)
}

// ListByUserID returns deliveries addressed to userID.
func (r *DeliveryRepository) ListByUserID(ctx context.Context, userID int64) ([]domain.Delivery, error) {
	return r.query(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *DeliveryRepository) query(ctx context.Context, query string, args ...any) ([]domain.Delivery, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := make([]domain.Delivery, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery row: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery rows: %w", err)
	}
	return deliveries, nil
}

// Update overwrites every column of the delivery.
func (r *DeliveryRepository) Update(ctx context.Context, d *domain.Delivery) error {
	query := `
		UPDATE deliveries
		SET address = $1, method = $2, delivery_cost = $3, start_date = $4, end_date = $5, order_id = $6, user_id = $7
		WHERE id = $8`

	ct, err := r.pool.Exec(ctx, query,
		d.Address,
		d.Method,
		d.Cost,
		d.StartDate,
		d.EndDate,
		d.OrderID,
		d.UserID,
		d.ID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("order %d or recipient does not exist", d.OrderID))
		}
		if database.IsStringTooLong(err) {
			return apperrors.InvalidInput("delivery address or method is too long")
		}
		return fmt.Errorf("update delivery: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("delivery", d.ID)
	}
	return nil
}

// Delete removes a delivery. An order pointing at it keeps existing with no
// delivery.
func (r *DeliveryRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete delivery: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("delivery", id)
	}
	return nil
}
