package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/OnlineStore/internal/repository"
	"github.com/utafrali/OnlineStore/internal/service"
	"github.com/utafrali/OnlineStore/pkg/httputil"
	"github.com/utafrali/OnlineStore/pkg/pagination"
)

// OrderHandler handles HTTP requests for orders and order items.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateOrderRequest is the JSON body for placing an order.
type CreateOrderRequest struct {
	UserID     int64  `json:"user_id" validate:"required,gt=0"`
	DeliveryID *int64 `json:"delivery_id" validate:"omitempty,gt=0"`
	Status     string `json:"status" validate:"max=32"`
}

// UpdateOrderRequest is the JSON body for a partial order update.
type UpdateOrderRequest struct {
	ID         int64   `json:"id" validate:"gte=0"`
	Status     *string `json:"status" validate:"omitempty,min=1,max=32"`
	DeliveryID *int64  `json:"delivery_id" validate:"omitempty,gt=0"`
}

// OrderItemRequest is the JSON body for adding or replacing an order item.
type OrderItemRequest struct {
	ID        int64 `json:"id" validate:"gte=0"`
	OrderID   int64 `json:"order_id" validate:"required,gt=0"`
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

func (req OrderItemRequest) input() service.OrderItemInput {
	return service.OrderItemInput{
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
}

// --- Order handlers ---

// ListOrders handles GET /api/v1/orders
// @Param user_id query int false "Only orders placed by this user"
// @Param status query string false "Only orders with this status"
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(w, r, "user_id")
	if !ok {
		return
	}
	p := pagination.FromRequest(r)

	filter := repository.OrderFilter{
		UserID:  userID,
		Page:    p.Page,
		PerPage: p.PerPage,
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	orders, total, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, p.Page, p.PerPage))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, order)
}

// GetOrderTotal handles GET /api/v1/orders/{id}/total
func (h *OrderHandler) GetOrderTotal(w http.ResponseWriter, r *http.Request) {
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

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), service.CreateOrderInput{
		UserID:     req.UserID,
		DeliveryID: req.DeliveryID,
		Status:     req.Status,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, order)
}

// UpdateOrder handles PATCH /api/v1/orders/{id}
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if !checkBodyID(w, r, "order", id, req.ID, h.logger) {
		return
	}

	order, err := h.service.UpdateOrder(r.Context(), id, service.UpdateOrderInput{
		Status:     req.Status,
		DeliveryID: req.DeliveryID,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, order)
}

// AttachDelivery handles POST /api/v1/orders/{id}/delivery
// Creates the delivery and makes it the order's delivery.
func (h *OrderHandler) AttachDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req DeliveryRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if !checkBodyID(w, r, "order", id, req.OrderID, h.logger) {
		return
	}

	delivery, err := h.service.AttachDelivery(r.Context(), id, req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, delivery)
}

// DeleteOrder handles DELETE /api/v1/orders/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListOrderItems handles GET /api/v1/orders/{id}/items
func (h *OrderHandler) ListOrderItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListOrderItems(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, items)
}

// --- Order item handlers ---

// AddOrderItem handles POST /api/v1/order-items
func (h *OrderHandler) AddOrderItem(w http.ResponseWriter, r *http.Request) {
	var req OrderItemRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	item, err := h.service.AddOrderItem(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, item)
}

// GetOrderItem handles GET /api/v1/order-items/{id}
func (h *OrderHandler) GetOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.service.GetOrderItem(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, item)
}

// UpdateOrderItem handles PUT /api/v1/order-items/{id}
func (h *OrderHandler) UpdateOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req OrderItemRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if !checkBodyID(w, r, "order item", id, req.ID, h.logger) {
		return
	}

	item, err := h.service.UpdateOrderItem(r.Context(), id, req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, item)
}

// DeleteOrderItem handles DELETE /api/v1/order-items/{id}
func (h *OrderHandler) DeleteOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteOrderItem(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
