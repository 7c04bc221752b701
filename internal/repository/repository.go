package repository

import (
	"context"

	"github.com/utafrali/OnlineStore/internal/domain"
)

// Every repository reports a missing row with apperrors.ErrNotFound (via
// apperrors.NotFound). Whether that surfaces as an error or as found=false
// is decided per aggregate by the service layer.

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	CategoryID *int64
	Page       int
	PerPage    int
}

// ProductRepository defines the interface for catalog product persistence.
type ProductRepository interface {
	// Create inserts p and its category memberships atomically and sets p.ID.
	Create(ctx context.Context, p *domain.Product) error

	// GetByID returns a product with its category ids.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// GetByIDs batch-loads products for pricing. Unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)

	// List returns products matching filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update overwrites the scalar fields of p. When p.CategoryIDs is non-nil
	// the membership set is replaced in the same transaction.
	Update(ctx context.Context, p *domain.Product) error

	// SetCategories replaces the membership set of a product.
	SetCategories(ctx context.Context, productID int64, categoryIDs []int64) error

	Delete(ctx context.Context, id int64) error
}

// CategoryRepository defines the interface for category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id int64) error
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create inserts the user together with its cart and wishlist in one
	// transaction and returns the new profile.
	Create(ctx context.Context, u *domain.User) (*domain.UserProfile, error)

	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetProfile returns the user with cart/wishlist ids and child counts.
	GetProfile(ctx context.Context, id int64) (*domain.UserProfile, error)

	// ExistsByUsernameOrEmail reports which of the two unique fields is taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)

	List(ctx context.Context, page, perPage int) ([]domain.User, int, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// CartRepository defines the interface for cart and cart item persistence.
type CartRepository interface {
	// GetByID returns the cart with its items.
	GetByID(ctx context.Context, id int64) (*domain.Cart, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Cart, error)
	List(ctx context.Context) ([]domain.Cart, error)

	// AddItem always inserts a new line and sets item.ID.
	AddItem(ctx context.Context, item *domain.CartItem) error
	GetItem(ctx context.Context, id int64) (*domain.CartItem, error)
	ListItems(ctx context.Context, cartID int64) ([]domain.CartItem, error)

	// UpdateItem overwrites every column of the item.
	UpdateItem(ctx context.Context, item *domain.CartItem) error
	DeleteItem(ctx context.Context, id int64) error
}

// WishlistRepository defines the interface for wishlist persistence.
type WishlistRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Wishlist, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Wishlist, error)

	AddItem(ctx context.Context, item *domain.WishlistItem) error
	GetItem(ctx context.Context, id int64) (*domain.WishlistItem, error)
	ListItems(ctx context.Context, wishlistID int64) ([]domain.WishlistItem, error)

	// UpdateItem changes the product and wishlist of an item. AddedAt is
	// left untouched.
	UpdateItem(ctx context.Context, item *domain.WishlistItem) error
	DeleteItem(ctx context.Context, id int64) error
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *int64
	Status  *string
	Page    int
	PerPage int
}

// OrderUpdate carries the fields of a partial order update. Nil fields are
// left unchanged.
type OrderUpdate struct {
	Status     *string
	DeliveryID *int64
}

// OrderRepository defines the interface for order persistence.
type OrderRepository interface {
	// Create inserts the order header and sets o.ID.
	Create(ctx context.Context, o *domain.Order) error

	// GetByID returns the order with its items.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// List returns orders matching filter, items included, with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// Update applies upd and stamps updated_at.
	Update(ctx context.Context, id int64, upd OrderUpdate) (*domain.Order, error)

	// AttachDelivery inserts d for orderID and points the order at it in one
	// transaction, replacing any previous reference.
	AttachDelivery(ctx context.Context, orderID int64, d *domain.Delivery) error

	Delete(ctx context.Context, id int64) error

	AddItem(ctx context.Context, item *domain.OrderItem) error
	GetItem(ctx context.Context, id int64) (*domain.OrderItem, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	UpdateItem(ctx context.Context, item *domain.OrderItem) error
	DeleteItem(ctx context.Context, id int64) error
}

// DeliveryRepository defines the interface for delivery persistence.
type DeliveryRepository interface {
	Create(ctx context.Context, d *domain.Delivery) error
	GetByID(ctx context.Context, id int64) (*domain.Delivery, error)
	List(ctx context.Context) ([]domain.Delivery, error)
	ListByUserID(ctx context.Context, userID int64) ([]domain.Delivery, error)
	Update(ctx context.Context, d *domain.Delivery) error
	Delete(ctx context.Context, id int64) error
}

// ReviewRepository defines the interface for review persistence.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	List(ctx context.Context, page, perPage int) ([]domain.Review, int, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)

	// Ratings returns every rating left on productID.
	Ratings(ctx context.Context, productID int64) ([]int, error)

	Update(ctx context.Context, r *domain.Review) error
	Delete(ctx context.Context, id int64) error
}
