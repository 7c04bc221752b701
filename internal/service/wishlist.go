package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/internal/repository"
)

// WishlistService manages wishlists and their items.
type WishlistService struct {
	repo   repository.WishlistRepository
	logger *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(repo repository.WishlistRepository, logger *slog.Logger) *WishlistService {
	return &WishlistService{repo: repo, logger: logger}
}

// AddWishlistItemInput holds the parameters for adding an item. A zero
// AddedAt is replaced with the current time.
type AddWishlistItemInput struct {
	WishlistID int64
	ProductID  int64
	AddedAt    time.Time
}

// GetWishlistByUser returns the wishlist of a user, or found=false.
func (s *WishlistService) GetWishlistByUser(ctx context.Context, userID int64) (*domain.Wishlist, bool, error) {
	w, err := s.repo.GetByUserID(ctx, userID)
	if ok, err := found(err, "get wishlist by user"); !ok || err != nil {
		return nil, ok, err
	}
	return w, true, nil
}

func (s *WishlistService) GetWishlist(ctx context.Context, id int64) (*domain.Wishlist, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	return w, nil
}

func (s *WishlistService) AddItem(ctx context.Context, input AddWishlistItemInput) (*domain.WishlistItem, error) {
	if err := requirePositive("wishlist_id", input.WishlistID); err != nil {
		return nil, err
	}
	if err := requirePositive("product_id", input.ProductID); err != nil {
		return nil, err
	}

	item := &domain.WishlistItem{
		WishlistID: input.WishlistID,
		ProductID:  input.ProductID,
		AddedAt:    input.AddedAt,
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add wishlist item: %w", err)
	}

	s.logger.InfoContext(ctx, "wishlist item added",
		slog.Int64("wishlist_id", item.WishlistID),
		slog.Int64("item_id", item.ID),
		slog.Int64("product_id", item.ProductID),
	)
	return item, nil
}

func (s *WishlistService) GetItem(ctx context.Context, id int64) (*domain.WishlistItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get wishlist item: %w", err)
	}
	return item, nil
}

func (s *WishlistService) ListItems(ctx context.Context, wishlistID int64) ([]domain.WishlistItem, error) {
	items, err := s.repo.ListItems(ctx, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	return items, nil
}

// UpdateItem moves the item to another product or wishlist. AddedAt is
// kept. A missing item is reported as found=false.
func (s *WishlistService) UpdateItem(ctx context.Context, id, productID, wishlistID int64) (bool, error) {
	if err := requirePositive("wishlist_id", wishlistID); err != nil {
		return false, err
	}
	if err := requirePositive("product_id", productID); err != nil {
		return false, err
	}

	item := &domain.WishlistItem{ID: id, WishlistID: wishlistID, ProductID: productID}
	ok, err := found(s.repo.UpdateItem(ctx, item), "update wishlist item")
	if ok {
		s.logger.InfoContext(ctx, "wishlist item updated", slog.Int64("item_id", id))
	}
	return ok, err
}

func (s *WishlistService) RemoveItem(ctx context.Context, id int64) (bool, error) {
	ok, err := found(s.repo.DeleteItem(ctx, id), "remove wishlist item")
	if ok {
		s.logger.InfoContext(ctx, "wishlist item removed", slog.Int64("item_id", id))
	}
	return ok, err
}
