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

// WishlistRepository implements repository.WishlistRepository using PostgreSQL.
type WishlistRepository struct {
	pool database.DBTX
}

func NewWishlistRepository(pool database.DBTX) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

func (r *WishlistRepository) getWishlist(ctx context.Context, column string, value int64) (*domain.Wishlist, error) {
	var w domain.Wishlist
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id FROM wishlists WHERE `+column+` = $1`, value,
	).Scan(&w.ID, &w.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("wishlist", value)
		}
		return nil, fmt.Errorf("get wishlist: %w", err)
	}

	w.Items, err = r.ListItems(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WishlistRepository) GetByID(ctx context.Context, id int64) (*domain.Wishlist, error) {
	return r.getWishlist(ctx, "id", id)
}

func (r *WishlistRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Wishlist, error) {
	return r.getWishlist(ctx, "user_id", userID)
}

func (r *WishlistRepository) AddItem(ctx context.Context, item *domain.WishlistItem) error {
	query := `
		INSERT INTO wishlist_items (wishlist_id, product_id, added_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query, item.WishlistID, item.ProductID, item.AddedAt).Scan(&item.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("wishlist %d or product %d does not exist", item.WishlistID, item.ProductID))
		}
		return fmt.Errorf("insert wishlist item: %w", err)
	}
	return nil
}

func (r *WishlistRepository) GetItem(ctx context.Context, id int64) (*domain.WishlistItem, error) {
	var it domain.WishlistItem
	err := r.pool.QueryRow(ctx,
		`SELECT id, wishlist_id, product_id, added_at FROM wishlist_items WHERE id = $1`, id,
	).Scan(&it.ID, &it.WishlistID, &it.ProductID, &it.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("wishlist item", id)
		}
		return nil, fmt.Errorf("get wishlist item: %w", err)
	}
	return &it, nil
}

func (r *WishlistRepository) ListItems(ctx context.Context, wishlistID int64) ([]domain.WishlistItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, wishlist_id, product_id, added_at FROM wishlist_items WHERE wishlist_id = $1 ORDER BY id`,
		wishlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("query wishlist items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.WishlistItem, 0)
	for rows.Next() {
		var it domain.WishlistItem
		if err := rows.Scan(&it.ID, &it.WishlistID, &it.ProductID, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist item rows: %w", err)
	}
	return items, nil
}

// UpdateItem moves an item to another product or wishlist. added_at is
// not part of the statement.
func (r *WishlistRepository) UpdateItem(ctx context.Context, item *domain.WishlistItem) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE wishlist_items SET wishlist_id = $1, product_id = $2 WHERE id = $3`,
		item.WishlistID, item.ProductID, item.ID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("wishlist %d or product %d does not exist", item.WishlistID, item.ProductID))
		}
		return fmt.Errorf("update wishlist item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", item.ID)
	}
	return nil
}

func (r *WishlistRepository) DeleteItem(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", id)
	}
	return nil
}
