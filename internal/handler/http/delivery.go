package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/OnlineStore/internal/service"
	"github.com/utafrali/OnlineStore/pkg/httputil"
)

// DeliveryHandler handles HTTP requests for delivery endpoints.
type DeliveryHandler struct {
	service *service.DeliveryService
	logger  *slog.Logger
}

// NewDeliveryHandler creates a new delivery HTTP handler.
func NewDeliveryHandler(svc *service.DeliveryService, logger *slog.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// DeliveryRequest is the JSON body for creating or replacing a delivery.
// Missing dates default to now.
type DeliveryRequest struct {
	ID        int64           `json:"id" validate:"gte=0"`
	Address   string          `json:"address" validate:"required,max=256"`
	Method    string          `json:"method" validate:"max=64"`
	Cost      decimal.Decimal `json:"cost"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	OrderID   int64           `json:"order_id" validate:"gte=0"`
	UserID    *int64          `json:"user_id" validate:"omitempty,gt=0"`
}

func (req DeliveryRequest) input() service.DeliveryInput {
	return service.DeliveryInput{
		Address:   req.Address,
		Method:    req.Method,
		Cost:      req.Cost,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		OrderID:   req.OrderID,
		UserID:    req.UserID,
	}
}

// --- Handlers ---

// ListDeliveries handles GET /api/v1/deliveries
func (h *DeliveryHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	deliveries, err := h.service.ListDeliveries(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, deliveries)
}

// GetDelivery handles GET /api/v1/deliveries/{id}
func (h *DeliveryHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	delivery, err := h.service.GetDelivery(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, delivery)
}

// CreateDelivery handles POST /api/v1/deliveries
func (h *DeliveryHandler) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	var req DeliveryRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	delivery, err := h.service.CreateDelivery(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, delivery)
}

// UpdateDelivery handles PUT /api/v1/deliveries/{id}
func (h *DeliveryHandler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req DeliveryRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if !checkBodyID(w, r, "delivery", id, req.ID, h.logger) {
		return
	}

	delivery, err := h.service.UpdateDelivery(r.Context(), id, req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, delivery)
}

// DeleteDelivery handles DELETE /api/v1/deliveries/{id}
func (h *DeliveryHandler) DeleteDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.service.DeleteDelivery(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeFound(w, r, found, "delivery", id, h.logger)
}
