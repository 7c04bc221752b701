package domain

import "time"

// Wishlist belongs to exactly one user.
type Wishlist struct {
	ID     int64          `json:"id"`
	UserID int64          `json:"user_id"`
	Items  []WishlistItem `json:"items"`
}

// WishlistItem is a saved product. AddedAt is set once, when the item is
// created.
type WishlistItem struct {
	ID         int64     `json:"id"`
	WishlistID int64     `json:"wishlist_id"`
	ProductID  int64     `json:"product_id"`
	AddedAt    time.Time `json:"added_at"`
}
