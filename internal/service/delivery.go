package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/internal/repository"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

// DeliveryService manages deliveries directly. Binding a delivery to its
// order's single reference goes through OrderService.AttachDelivery.
type DeliveryService struct {
	deliveries repository.DeliveryRepository
	orders     repository.OrderRepository
	logger     *slog.Logger
}

// NewDeliveryService creates a new delivery service.
func NewDeliveryService(deliveries repository.DeliveryRepository, orders repository.OrderRepository, logger *slog.Logger) *DeliveryService {
	return &DeliveryService{
		deliveries: deliveries,
		orders:     orders,
		logger:     logger,
	}
}

// DeliveryInput holds the writable fields of a delivery. A zero StartDate
// means now and a zero EndDate means StartDate.
type DeliveryInput struct {
	Address   string
	Method    string
	Cost      decimal.Decimal
	StartDate time.Time
	EndDate   time.Time
	OrderID   int64
	UserID    *int64
}

func (in DeliveryInput) toDelivery(id int64) (*domain.Delivery, error) {
	switch {
	case in.Address == "":
		return nil, apperrors.InvalidInput("address is required")
	case utf8.RuneCountInString(in.Address) > domain.MaxAddressLength:
		return nil, apperrors.InvalidInput(fmt.Sprintf("address must be at most %d characters", domain.MaxAddressLength))
	case utf8.RuneCountInString(in.Method) > domain.MaxMethodLength:
		return nil, apperrors.InvalidInput(fmt.Sprintf("method must be at most %d characters", domain.MaxMethodLength))
	}
	if in.UserID != nil {
		if err := requirePositive("user_id", *in.UserID); err != nil {
			return nil, err
		}
	}

	d := &domain.Delivery{
		ID:        id,
		Address:   in.Address,
		Method:    in.Method,
		Cost:      in.Cost,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		OrderID:   in.OrderID,
		UserID:    in.UserID,
	}
	if d.StartDate.IsZero() {
		d.StartDate = time.Now().UTC()
	}
	if d.EndDate.IsZero() {
		d.EndDate = d.StartDate
	}
	if err := d.Validate(); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return d, nil
}

// CreateDelivery records a delivery for an existing order.
func (s *DeliveryService) CreateDelivery(ctx context.Context, input DeliveryInput) (*domain.Delivery, error) {
	if err := requirePositive("order_id", input.OrderID); err != nil {
		return nil, err
	}
	d, err := input.toDelivery(0)
	if err != nil {
		return nil, err
	}

	if _, err := s.orders.GetByID(ctx, input.OrderID); err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}

	if err := s.deliveries.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}

	s.logger.InfoContext(ctx, "delivery created",
		slog.Int64("delivery_id", d.ID),
		slog.Int64("order_id", d.OrderID),
	)
	return d, nil
}

func (s *DeliveryService) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	d, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

func (s *DeliveryService) ListDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	list, err := s.deliveries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return list, nil
}

// ListDeliveriesByUser returns the deliveries addressed to userID.
func (s *DeliveryService) ListDeliveriesByUser(ctx context.Context, userID int64) ([]domain.Delivery, error) {
	list, err := s.deliveries.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries by user: %w", err)
	}
	return list, nil
}

// UpdateDelivery replaces every field of the delivery. Unlike deletion, a
// missing delivery is an error here.
func (s *DeliveryService) UpdateDelivery(ctx context.Context, id int64, input DeliveryInput) (*domain.Delivery, error) {
	if err := requirePositive("order_id", input.OrderID); err != nil {
		return nil, err
	}
	d, err := input.toDelivery(id)
	if err != nil {
		return nil, err
	}

	if err := s.deliveries.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("update delivery: %w", err)
	}

	s.logger.InfoContext(ctx, "delivery updated", slog.Int64("delivery_id", id))
	return d, nil
}

// DeleteDelivery removes the delivery; an order pointing at it loses the
// reference. A missing delivery is reported as found=false.
func (s *DeliveryService) DeleteDelivery(ctx context.Context, id int64) (bool, error) {
	ok, err := found(s.deliveries.Delete(ctx, id), "delete delivery")
	if ok {
		s.logger.InfoContext(ctx, "delivery deleted", slog.Int64("delivery_id", id))
	}
	return ok, err
}
