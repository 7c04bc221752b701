package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/OnlineStore/internal/service"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
	"github.com/utafrali/OnlineStore/pkg/httputil"
	"github.com/utafrali/OnlineStore/pkg/pagination"
)

// UserHandler handles HTTP requests for users and the collections they own.
type UserHandler struct {
	users      *service.UserService
	carts      *service.CartService
	wishlists  *service.WishlistService
	orders     *service.OrderService
	deliveries *service.DeliveryService
	logger     *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(
	users *service.UserService,
	carts *service.CartService,
	wishlists *service.WishlistService,
	orders *service.OrderService,
	deliveries *service.DeliveryService,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		users:      users,
		carts:      carts,
		wishlists:  wishlists,
		orders:     orders,
		deliveries: deliveries,
		logger:     logger,
	}
}

// --- Request DTOs ---

// CreateUserRequest is the JSON body for registering a user.
type CreateUserRequest struct {
	Username  string     `json:"username" validate:"required,max=64"`
	Name      string     `json:"name" validate:"max=128"`
	Password  string     `json:"password" validate:"required,max=64"`
	Email     string     `json:"email" validate:"required,max=254,email"`
	Phone     string     `json:"phone" validate:"max=32"`
	Role      string     `json:"role"`
	BirthDate *time.Time `json:"birth_date"`
}

// UpdateUserRequest is the JSON body for a partial user update.
type UpdateUserRequest struct {
	ID        int64      `json:"id" validate:"gte=0"`
	Username  string     `json:"username" validate:"max=64"`
	Name      string     `json:"name" validate:"max=128"`
	Password  string     `json:"password" validate:"max=64"`
	Email     string     `json:"email" validate:"omitempty,max=254,email"`
	Phone     string     `json:"phone" validate:"max=32"`
	Role      string     `json:"role"`
	BirthDate *time.Time `json:"birth_date"`
}

// LoginRequest is the JSON body for checking credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254,email"`
	Password string `json:"password" validate:"required"`
}

// --- Handlers ---

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)

	users, total, err := h.users.ListUsers(r.Context(), p.Page, p.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(users, total, p.Page, p.PerPage))
}

// GetUser handles GET /api/v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	profile, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, profile)
}

// GetUserByUsername handles GET /api/v1/users/by-username/{username}
func (h *UserHandler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("username is required"), h.logger)
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), username)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, user)
}

// CreateUser handles POST /api/v1/users
// The response carries the ids of the cart and wishlist created with the user.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	profile, err := h.users.CreateUser(r.Context(), service.CreateUserInput{
		Username:  req.Username,
		Name:      req.Name,
		Password:  req.Password,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, profile)
}

// UpdateUser handles PUT /api/v1/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if !checkBodyID(w, r, "user", id, req.ID, h.logger) {
		return
	}

	found, err := h.users.UpdateUser(r.Context(), id, service.UpdateUserInput{
		Username:  req.Username,
		Name:      req.Name,
		Password:  req.Password,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeFound(w, r, found, "user", id, h.logger)
}

// DeleteUser handles DELETE /api/v1/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.users.DeleteUser(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeFound(w, r, found, "user", id, h.logger)
}

// Login handles POST /api/v1/auth/login
// Only verifies credentials; no session or token is issued.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, user)
}

// GetUserCart handles GET /api/v1/users/{id}/cart
func (h *UserHandler) GetUserCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	cart, found, err := h.carts.GetCartByUser(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !found {
		httputil.WriteError(w, r, apperrors.NotFound("cart for user", id), h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, cart)
}

// GetUserWishlist handles GET /api/v1/users/{id}/wishlist
func (h *UserHandler) GetUserWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	wishlist, found, err := h.wishlists.GetWishlistByUser(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !found {
		httputil.WriteError(w, r, apperrors.NotFound("wishlist for user", id), h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, wishlist)
}

// ListUserOrders handles GET /api/v1/users/{id}/orders
func (h *UserHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p := pagination.FromRequest(r)

	orders, total, err := h.orders.ListOrdersByUser(r.Context(), id, p.Page, p.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, p.Page, p.PerPage))
}

// ListUserDeliveries handles GET /api/v1/users/{id}/deliveries
func (h *UserHandler) ListUserDeliveries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deliveries, err := h.deliveries.ListDeliveriesByUser(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, deliveries)
}
