package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/utafrali/OnlineStore/internal/service"
	"github.com/utafrali/OnlineStore/pkg/httputil"
)

// CartHandler handles HTTP requests for carts and cart items.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CartItemRequest is the JSON body for adding or replacing a cart item. A
// missing quantity means 1.
type CartItemRequest struct {
	ID        int64 `json:"id" validate:"gte=0"`
	CartID    int64 `json:"cart_id" validate:"required,gt=0"`
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

func (req CartItemRequest) input() service.CartItemInput {
	return service.CartItemInput{
		CartID:    req.CartID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
}

type totalResponse struct {
	ID    int64           `json:"id"`
	Total decimal.Decimal `json:"total"`
}

// --- Cart handlers ---

// ListCarts handles GET /api/v1/carts
func (h *CartHandler) ListCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := h.service.ListCarts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, carts)
}

// GetCart handles GET /api/v1/carts/{id}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, cart)
}

// GetCartTotal handles GET /api/v1/carts/{id}/total
func (h *CartHandler) GetCartTotal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	total, err := h.service.ComputeTotal(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, totalResponse{ID: id, Total: total})
}

// ListCartItems handles GET /api/v1/carts/{id}/items
func (h *CartHandler) ListCartItems(w http.ResponseWriter, r *http.Request) {
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

// --- Cart item handlers ---

// AddItem handles POST /api/v1/cart-items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	item, err := h.service.AddItem(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, item)
}

// GetItem handles GET /api/v1/cart-items/{id}
func (h *CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
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

// UpdateItem handles PUT /api/v1/cart-items/{id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req CartItemRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if !checkBodyID(w, r, "cart item", id, req.ID, h.logger) {
		return
	}

	found, err := h.service.UpdateItem(r.Context(), id, req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeFound(w, r, found, "cart item", id, h.logger)
}

// RemoveItem handles DELETE /api/v1/cart-items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.service.RemoveItem(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeFound(w, r, found, "cart item", id, h.logger)
}
