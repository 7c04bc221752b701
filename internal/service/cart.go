package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/internal/repository"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

// CartService implements cart reads and cart item management. Totals are
// priced on every read from the current catalog.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// CartItemInput holds the parameters for adding or replacing a cart item.
type CartItemInput struct {
	CartID    int64
	ProductID int64
	Quantity  int
}

func (in *CartItemInput) validate() error {
	if err := requirePositive("cart_id", in.CartID); err != nil {
		return err
	}
	if err := requirePositive("product_id", in.ProductID); err != nil {
		return err
	}
	if in.Quantity == 0 {
		in.Quantity = domain.DefaultQuantity
	}
	if in.Quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	return nil
}

func (s *CartService) price(ctx context.Context, cart *domain.Cart) (*domain.CartView, error) {
	catalog, err := loadCatalog(ctx, s.products, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	view := domain.PriceCart(cart, catalog)
	return &view, nil
}

// GetCartByUser returns the priced cart of a user. A user without a cart
// is a normal outcome and is reported as found=false.
func (s *CartService) GetCartByUser(ctx context.Context, userID int64) (*domain.CartView, bool, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if ok, err := found(err, "get cart by user"); !ok || err != nil {
		return nil, ok, err
	}

	view, err := s.price(ctx, cart)
	if err != nil {
		return nil, false, fmt.Errorf("get cart by user: %w", err)
	}
	return view, true, nil
}

func (s *CartService) GetCart(ctx context.Context, id int64) (*domain.CartView, error) {
	cart, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	view, err := s.price(ctx, cart)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return view, nil
}

// ListCarts prices every cart against a single catalog snapshot.
func (s *CartService) ListCarts(ctx context.Context) ([]domain.CartView, error) {
	carts, err := s.carts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}

	var ids []int64
	for i := range carts {
		ids = append(ids, carts[i].ProductIDs()...)
	}
	catalog, err := loadCatalog(ctx, s.products, ids)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}

	views := make([]domain.CartView, len(carts))
	for i := range carts {
		views[i] = domain.PriceCart(&carts[i], catalog)
	}
	return views, nil
}

// AddItem appends a new line to the cart. The same product added twice
// yields two lines.
func (s *CartService) AddItem(ctx context.Context, input CartItemInput) (*domain.CartItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	item := &domain.CartItem{
		CartID:    input.CartID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}
	if err := s.carts.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	s.logger.InfoContext(ctx, "cart item added",
		slog.Int64("cart_id", item.CartID),
		slog.Int64("item_id", item.ID),
		slog.Int64("product_id", item.ProductID),
		slog.Int("quantity", item.Quantity),
	)
	return item, nil
}

func (s *CartService) GetItem(ctx context.Context, id int64) (*domain.CartItem, error) {
	item, err := s.carts.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return item, nil
}

func (s *CartService) ListItems(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	items, err := s.carts.ListItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	return items, nil
}

// UpdateItem replaces every field of the item. A missing item is reported
// as found=false.
func (s *CartService) UpdateItem(ctx context.Context, id int64, input CartItemInput) (bool, error) {
	if err := input.validate(); err != nil {
		return false, err
	}

	item := &domain.CartItem{
		ID:        id,
		CartID:    input.CartID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}
	ok, err := found(s.carts.UpdateItem(ctx, item), "update cart item")
	if ok {
		s.logger.InfoContext(ctx, "cart item updated",
			slog.Int64("item_id", id),
			slog.Int("quantity", item.Quantity),
		)
	}
	return ok, err
}

// RemoveItem deletes the item. Removing it again reports found=false.
func (s *CartService) RemoveItem(ctx context.Context, id int64) (bool, error) {
	ok, err := found(s.carts.DeleteItem(ctx, id), "remove cart item")
	if ok {
		s.logger.InfoContext(ctx, "cart item removed", slog.Int64("item_id", id))
	}
	return ok, err
}

// ComputeTotal returns the current total of the cart.
func (s *CartService) ComputeTotal(ctx context.Context, cartID int64) (decimal.Decimal, error) {
	view, err := s.GetCart(ctx, cartID)
	if err != nil {
		return decimal.Zero, err
	}
	return view.TotalPrice, nil
}
