package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/pkg/database"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

const userColumns = `u.id, u.username, u.name, u.password_hash, u.email, u.phone, u.role, u.registration_date, u.birth_date`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row rowScanner, extra ...any) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	dest := append([]any{
		&u.ID,
		&u.Username,
		&u.Name,
		&u.PasswordHash,
		&u.Email,
		&u.Phone,
		&role,
		&u.RegistrationDate,
		&u.BirthDate,
	}, extra...)
	err := row.Scan(dest...)
	u.Role = domain.Role(role)
	return u, err
}

// duplicateUser names the unique field a violation refers to.
func duplicateUser(err error, u *domain.User) error {
	if strings.Contains(database.ConstraintName(err), "email") {
		return apperrors.AlreadyExists("user", "email", u.Email)
	}
	return apperrors.AlreadyExists("user", "username", u.Username)
}

// Create inserts the user, its cart and its wishlist in one transaction.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.UserProfile, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userQuery := `
		INSERT INTO users (username, name, password_hash, email, phone, role, registration_date, birth_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err = tx.QueryRow(ctx, userQuery,
		u.Username,
		u.Name,
		u.PasswordHash,
		u.Email,
		u.Phone,
		string(u.Role),
		u.RegistrationDate,
		u.BirthDate,
	).Scan(&u.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, duplicateUser(err, u)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	profile := &domain.UserProfile{User: *u}

	if err := tx.QueryRow(ctx,
		`INSERT INTO carts (user_id) VALUES ($1) RETURNING id`, u.ID,
	).Scan(&profile.CartID); err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO wishlists (user_id) VALUES ($1) RETURNING id`, u.ID,
	).Scan(&profile.WishlistID); err != nil {
		return nil, fmt.Errorf("insert wishlist: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return profile, nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE ` + where
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", arg)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, "u.id = $1", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, "u.username = $1", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "lower(u.email) = lower($1)", email)
}

// GetProfile loads the user together with its owned cart and wishlist ids
// and the number of orders, reviews and deliveries referencing it.
func (r *UserRepository) GetProfile(ctx context.Context, id int64) (*domain.UserProfile, error) {
	query := `
		SELECT ` + userColumns + `,
			COALESCE(c.id, 0),
			COALESCE(w.id, 0),
			(SELECT count(*) FROM orders o WHERE o.user_id = u.id),
			(SELECT count(*) FROM reviews rv WHERE rv.author_id = u.id),
			(SELECT count(*) FROM deliveries d WHERE d.user_id = u.id)
		FROM users u
		LEFT JOIN carts c ON c.user_id = u.id
		LEFT JOIN wishlists w ON w.user_id = u.id
		WHERE u.id = $1`

	var p domain.UserProfile
	u, err := scanUser(r.pool.QueryRow(ctx, query, id),
		&p.CartID,
		&p.WishlistID,
		&p.OrderCount,
		&p.ReviewCount,
		&p.DeliveryCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	p.User = u
	return &p, nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, bool, error) {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM users WHERE username = $1),
			EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($2))`

	var usernameTaken, emailTaken bool
	if err := r.pool.QueryRow(ctx, query, username, email).Scan(&usernameTaken, &emailTaken); err != nil {
		return false, false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return usernameTaken, emailTaken, nil
}

// List returns a page of users with the total count.
func (r *UserRepository) List(ctx context.Context, page, perPage int) ([]domain.User, int, error) {
	limit, offset := limitOffset(page, perPage)
	query := `
		SELECT ` + userColumns + `, count(*) OVER() AS total_count
		FROM users u
		ORDER BY u.id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var total int
	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, total, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET username = $1, name = $2, password_hash = $3, email = $4, phone = $5, role = $6, birth_date = $7
		WHERE id = $8`

	ct, err := r.pool.Exec(ctx, query,
		u.Username,
		u.Name,
		u.PasswordHash,
		u.Email,
		u.Phone,
		string(u.Role),
		u.BirthDate,
		u.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return duplicateUser(err, u)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID)
	}
	return nil
}

// Delete removes the user. Cart, wishlist, orders and reviews cascade.
// Deliveries of someone else's order that name this user as recipient
// lose the recipient.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}
