package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/internal/repository"
	"github.com/utafrali/OnlineStore/pkg/database"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

const productColumns = `p.id, p.article, p.name, p.description, p.price, p.media_urls, p.created_at, p.updated_at,
		ARRAY(SELECT pc.category_id FROM product_categories pc WHERE pc.product_id = p.id ORDER BY pc.category_id) AS category_ids`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Article,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.MediaURLs,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CategoryIDs,
	)
	if p.MediaURLs == nil {
		p.MediaURLs = []string{}
	}
	if p.CategoryIDs == nil {
		p.CategoryIDs = []int64{}
	}
	return p, err
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Create inserts a product and its category memberships atomically.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO products (article, name, description, price, media_urls, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err = tx.QueryRow(ctx, query,
		p.Article,
		p.Name,
		p.Description,
		p.Price,
		nonNilStrings(p.MediaURLs),
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "article", p.Article)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	if len(p.CategoryIDs) > 0 {
		if err := replaceCategories(ctx, tx, p.ID, p.CategoryIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetByIDs loads every product in ids with one query. Missing ids are
// simply absent from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) (products []domain.Product, err error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = ANY($1)`

	ctx, end := database.TraceQuery(ctx, "products.get_by_ids", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("batch load products: %w", err)
	}
	defer rows.Close()

	products = make([]domain.Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// List returns products matching the filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		where string
		args  []any
	)
	if filter.CategoryID != nil {
		where = `WHERE EXISTS (SELECT 1 FROM product_categories f WHERE f.product_id = p.id AND f.category_id = $1)`
		args = append(args, *filter.CategoryID)
	}

	limit, offset := limitOffset(filter.Page, filter.PerPage)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products p
		%s
		ORDER BY p.id
		LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var total int
	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Article,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.MediaURLs,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.CategoryIDs,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, total, nil
}

// Update overwrites the product's scalar fields and, when p.CategoryIDs is
// non-nil, replaces its category set inside the same transaction.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE products
		SET article = $1, name = $2, description = $3, price = $4, media_urls = $5, updated_at = $6
		WHERE id = $7`

	ct, err := tx.Exec(ctx, query,
		p.Article,
		p.Name,
		p.Description,
		p.Price,
		nonNilStrings(p.MediaURLs),
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "article", p.Article)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	if p.CategoryIDs != nil {
		if err := replaceCategories(ctx, tx, p.ID, p.CategoryIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SetCategories replaces the category set of a product.
func (r *ProductRepository) SetCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked int64
	err = tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("product", productID)
		}
		return fmt.Errorf("lock product: %w", err)
	}

	if err := replaceCategories(ctx, tx, productID, categoryIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// replaceCategories turns the current membership of productID into target
// by deleting what is no longer wanted and inserting what is new.
func replaceCategories(ctx context.Context, tx pgx.Tx, productID int64, target []int64) error {
	current, err := collectIDs(ctx, tx,
		`SELECT category_id FROM product_categories WHERE product_id = $1 ORDER BY category_id`, productID)
	if err != nil {
		return fmt.Errorf("load product categories: %w", err)
	}

	add, remove := domain.DiffCategories(current, target)

	if len(remove) > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM product_categories WHERE product_id = $1 AND category_id = ANY($2)`,
			productID, remove,
		); err != nil {
			return fmt.Errorf("remove product categories: %w", err)
		}
	}

	if len(add) > 0 {
		if _, err := tx.Exec(ctx,
			`INSERT INTO product_categories (product_id, category_id) SELECT $1, unnest($2::bigint[])`,
			productID, add,
		); err != nil {
			if database.IsForeignKeyViolation(err) {
				return apperrors.InvalidInput(fmt.Sprintf("unknown category in %v", add))
			}
			return fmt.Errorf("add product categories: %w", err)
		}
	}
	return nil
}

// Delete removes a product. Memberships, cart, order and wishlist lines and
// reviews referencing it go with it.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}
