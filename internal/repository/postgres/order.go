package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/internal/repository"
	"github.com/utafrali/OnlineStore/pkg/database"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

const orderColumns = `id, status, user_id, delivery_id, created_at, updated_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func scanOrder(row rowScanner, extra ...any) (domain.Order, error) {
	var o domain.Order
	dest := append([]any{
		&o.ID,
		&o.Status,
		&o.UserID,
		&o.DeliveryID,
		&o.CreatedAt,
		&o.UpdatedAt,
	}, extra...)
	err := row.Scan(dest...)
	return o, err
}

func orderWriteError(err error, o *domain.Order, op string) error {
	switch {
	case database.IsUniqueViolation(err):
		return apperrors.Conflict(fmt.Sprintf("delivery %d already belongs to another order", derefID(o.DeliveryID)))
	case database.IsForeignKeyViolation(err):
		return apperrors.InvalidInput("order references a user or delivery that does not exist")
	case database.IsStringTooLong(err):
		return apperrors.InvalidInput("order status is too long")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

// Create inserts the order header and sets o.ID.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	query := `
		INSERT INTO orders (status, user_id, delivery_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		o.Status,
		o.UserID,
		o.DeliveryID,
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return orderWriteError(err, o, "insert order")
	}
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (order *domain.Order, err error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "orders.get", query)
	defer func() { end(err) }()

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	o.Items, err = r.ListItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns orders matching the given filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIndex, argIndex+1,
	)

	limit, offset := limitOffset(filter.Page, filter.PerPage)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	if len(orders) == 0 {
		return orders, totalCount, nil
	}

	// Batch-load items for all orders in a single query to avoid N+1.
	orderIDs := make([]int64, len(orders))
	for i := range orders {
		orderIDs[i] = orders[i].ID
	}

	items, err := r.queryItems(ctx,
		`SELECT id, order_id, product_id, quantity FROM order_items WHERE order_id = ANY($1) ORDER BY id`, orderIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("batch load order items: %w", err)
	}

	itemsByOrderID := make(map[int64][]domain.OrderItem, len(orders))
	for _, item := range items {
		itemsByOrderID[item.OrderID] = append(itemsByOrderID[item.OrderID], item)
	}
	for i := range orders {
		if its, ok := itemsByOrderID[orders[i].ID]; ok {
			orders[i].Items = its
		} else {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	return orders, totalCount, nil
}

// Update applies the non-nil fields of upd and refreshes updated_at.
func (r *OrderRepository) Update(ctx context.Context, id int64, upd repository.OrderUpdate) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET status = COALESCE($1, status),
			delivery_id = COALESCE($2, delivery_id),
			updated_at = $3
		WHERE id = $4
		RETURNING ` + orderColumns

	o, err := scanOrder(r.pool.QueryRow(ctx, query, upd.Status, upd.DeliveryID, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, orderWriteError(err, &domain.Order{DeliveryID: upd.DeliveryID}, "update order")
	}

	o.Items, err = r.ListItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// AttachDelivery creates d for orderID and makes it the order's delivery.
// A previously attached delivery stays in place but is no longer referenced.
func (r *OrderRepository) AttachDelivery(ctx context.Context, orderID int64, d *domain.Delivery) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked int64
	if err := tx.QueryRow(ctx, `SELECT id FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("order", orderID)
		}
		return fmt.Errorf("lock order: %w", err)
	}

	d.OrderID = orderID
	if err := insertDelivery(ctx, tx, d); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET delivery_id = $1, updated_at = $2 WHERE id = $3`,
		d.ID, time.Now().UTC(), orderID,
	); err != nil {
		return fmt.Errorf("link delivery: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete removes an order and its items.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

// AddItem inserts a line into an order and sets item.ID.
func (r *OrderRepository) AddItem(ctx context.Context, item *domain.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query, item.OrderID, item.ProductID, item.Quantity).Scan(&item.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("order %d or product %d does not exist", item.OrderID, item.ProductID))
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetItem(ctx context.Context, id int64) (*domain.OrderItem, error) {
	var item domain.OrderItem
	err := r.pool.QueryRow(ctx,
		`SELECT id, order_id, product_id, quantity FROM order_items WHERE id = $1`, id,
	).Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order item", id)
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}
	return &item, nil
}

// ListItems retrieves all items belonging to a given order.
func (r *OrderRepository) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	return r.queryItems(ctx,
		`SELECT id, order_id, product_id, quantity FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
}

func (r *OrderRepository) queryItems(ctx context.Context, query string, arg any) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}
	return items, nil
}

// UpdateItem overwrites every column of an order line.
func (r *OrderRepository) UpdateItem(ctx context.Context, item *domain.OrderItem) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE order_items SET order_id = $1, product_id = $2, quantity = $3 WHERE id = $4`,
		item.OrderID, item.ProductID, item.Quantity, item.ID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("order %d or product %d does not exist", item.OrderID, item.ProductID))
		}
		return fmt.Errorf("update order item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order item", item.ID)
	}
	return nil
}

func (r *OrderRepository) DeleteItem(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order item", id)
	}
	return nil
}
