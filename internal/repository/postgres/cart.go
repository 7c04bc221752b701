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

// CartRepository implements repository.CartRepository using PostgreSQL.
type CartRepository struct {
	pool database.DBTX
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool database.DBTX) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) getCart(ctx context.Context, column string, value int64) (cart *domain.Cart, err error) {
	query := `SELECT id, user_id FROM carts WHERE ` + column + ` = $1`

	ctx, end := database.TraceQuery(ctx, "carts.get", query)
	defer func() { end(err) }()

	var c domain.Cart
	if err := r.pool.QueryRow(ctx, query, value).Scan(&c.ID, &c.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cart", value)
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	c.Items, err = r.ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a cart by its ID, eagerly loading its items.
func (r *CartRepository) GetByID(ctx context.Context, id int64) (*domain.Cart, error) {
	return r.getCart(ctx, "id", id)
}

// GetByUserID retrieves the cart owned by userID.
func (r *CartRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Cart, error) {
	return r.getCart(ctx, "user_id", userID)
}

// List returns every cart with its items, loading the items in one batch.
func (r *CartRepository) List(ctx context.Context) ([]domain.Cart, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id FROM carts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	defer rows.Close()

	carts := make([]domain.Cart, 0)
	for rows.Next() {
		var c domain.Cart
		if err := rows.Scan(&c.ID, &c.UserID); err != nil {
			return nil, fmt.Errorf("scan cart row: %w", err)
		}
		carts = append(carts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart rows: %w", err)
	}
	if len(carts) == 0 {
		return carts, nil
	}

	ids := make([]int64, len(carts))
	for i := range carts {
		ids[i] = carts[i].ID
	}
	items, err := r.queryItems(ctx,
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}

	byCart := make(map[int64][]domain.CartItem, len(carts))
	for _, it := range items {
		byCart[it.CartID] = append(byCart[it.CartID], it)
	}
	for i := range carts {
		if its, ok := byCart[carts[i].ID]; ok {
			carts[i].Items = its
		} else {
			carts[i].Items = []domain.CartItem{}
		}
	}
	return carts, nil
}

// AddItem inserts a new line. It never merges with an existing line for the
// same product.
func (r *CartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query, item.CartID, item.ProductID, item.Quantity).Scan(&item.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("cart %d or product %d does not exist", item.CartID, item.ProductID))
		}
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) GetItem(ctx context.Context, id int64) (*domain.CartItem, error) {
	var it domain.CartItem
	err := r.pool.QueryRow(ctx,
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE id = $1`, id,
	).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cart item", id)
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return &it, nil
}

func (r *CartRepository) ListItems(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	return r.queryItems(ctx,
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id`, cartID)
}

func (r *CartRepository) queryItems(ctx context.Context, query string, arg any) ([]domain.CartItem, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart item rows: %w", err)
	}
	return items, nil
}

// UpdateItem overwrites quantity, product and cart of an existing line.
func (r *CartRepository) UpdateItem(ctx context.Context, item *domain.CartItem) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET cart_id = $1, product_id = $2, quantity = $3 WHERE id = $4`,
		item.CartID, item.ProductID, item.Quantity, item.ID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("cart %d or product %d does not exist", item.CartID, item.ProductID))
		}
		return fmt.Errorf("update cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart item", item.ID)
	}
	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart item", id)
	}
	return nil
}
