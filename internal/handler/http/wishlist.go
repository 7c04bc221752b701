package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/OnlineStore/internal/service"
	"github.com/utafrali/OnlineStore/pkg/httputil"
)

// WishlistHandler handles HTTP requests for wishlists and their items.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// WishlistItemRequest is the JSON body for adding or moving a wishlist
// item. added_at is only honoured on creation.
type WishlistItemRequest struct {
	ID         int64     `json:"id" validate:"gte=0"`
	WishlistID int64     `json:"wishlist_id" validate:"required,gt=0"`
	ProductID  int64     `json:"product_id" validate:"required,gt=0"`
	AddedAt    time.Time `json:"added_at"`
}

// --- Handlers ---

// GetWishlist handles GET /api/v1/wishlists/{id}
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	wishlist, err := h.service.GetWishlist(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, wishlist)
}

// ListItems handles GET /api/v1/wishlists/{id}/items
func (h *WishlistHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListItems(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, items)
}

// AddItem handles POST /api/v1/wishlist-items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req WishlistItemRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	item, err := h.service.AddItem(r.Context(), service.AddWishlistItemInput{
		WishlistID: req.WishlistID,
		ProductID:  req.ProductID,
		AddedAt:    req.AddedAt,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, item)
}

// GetItem handles GET /api/v1/wishlist-items/{id}
func (h *WishlistHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, item)
}

// UpdateItem handles PUT /api/v1/wishlist-items/{id}
func (h *WishlistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req WishlistItemRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if !checkBodyID(w, r, "wishlist item", id, req.ID, h.logger) {
		return
	}

	found, err := h.service.UpdateItem(r.Context(), id, req.ProductID, req.WishlistID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeFound(w, r, found, "wishlist item", id, h.logger)
}

// RemoveItem handles DELETE /api/v1/wishlist-items/{id}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.service.RemoveItem(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeFound(w, r, found, "wishlist item", id, h.logger)
}
