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

// OrderService implements the order lifecycle. Unlike the other
// aggregates, a missing order or order item is always an error.
type OrderService struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	products   repository.ProductRepository
	deliveries repository.DeliveryRepository
	producer   EventPublisher
	logger     *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	products repository.ProductRepository,
	deliveries repository.DeliveryRepository,
	producer EventPublisher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:     orders,
		users:      users,
		products:   products,
		deliveries: deliveries,
		producer:   producer,
		logger:     logger,
	}
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	UserID     int64
	DeliveryID *int64
	Status     string
}

// UpdateOrderInput holds a partial order update. Nil fields are unchanged.
type UpdateOrderInput struct {
	Status     *string
	DeliveryID *int64
}

// OrderItemInput holds the parameters for adding or replacing an order item.
type OrderItemInput struct {
	OrderID   int64
	ProductID int64
	Quantity  int
}

func (in OrderItemInput) validate() error {
	if err := requirePositive("order_id", in.OrderID); err != nil {
		return err
	}
	if err := requirePositive("product_id", in.ProductID); err != nil {
		return err
	}
	if in.Quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	return nil
}

func validateStatus(status string) error {
	if utf8.RuneCountInString(status) > domain.MaxOrderStatusLength {
		return apperrors.InvalidInput(fmt.Sprintf("status must be at most %d characters", domain.MaxOrderStatusLength))
	}
	return nil
}

// CreateOrder places an order for an existing user.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if err := requirePositive("user_id", input.UserID); err != nil {
		return nil, err
	}
	if err := validateStatus(input.Status); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if input.DeliveryID != nil {
		if _, err := s.deliveries.GetByID(ctx, *input.DeliveryID); err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
	}

	status := input.Status
	if status == "" {
		status = domain.DefaultOrderStatus
	}

	now := time.Now().UTC()
	order := &domain.Order{
		UserID:     input.UserID,
		DeliveryID: input.DeliveryID,
		Status:     status,
		Items:      []domain.OrderItem{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		logPublishFailure(ctx, s.logger, "order.created", err, slog.Int64("order_id", order.ID))
	}

	s.logger.InfoContext(ctx, "order created",
		slog.Int64("order_id", order.ID),
		slog.Int64("user_id", order.UserID),
		slog.String("status", order.Status),
	)
	return order, nil
}

// GetOrder returns the priced order with user and delivery summaries.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.OrderView, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	catalog, err := loadCatalog(ctx, s.products, order.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("get order user: %w", err)
	}

	var delivery *domain.Delivery
	if order.DeliveryID != nil {
		delivery, err = s.deliveries.GetByID(ctx, *order.DeliveryID)
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, fmt.Errorf("get order delivery: %w", err)
		}
	}

	view := domain.PriceOrder(order, catalog, user, delivery)
	return &view, nil
}

// ListOrders returns a page of priced orders. List views carry no user or
// delivery summaries.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.OrderView, int, error) {
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	var ids []int64
	for i := range orders {
		ids = append(ids, orders[i].ProductIDs()...)
	}
	catalog, err := loadCatalog(ctx, s.products, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	views := make([]domain.OrderView, len(orders))
	for i := range orders {
		views[i] = domain.PriceOrder(&orders[i], catalog, nil, nil)
	}
	return views, total, nil
}

func (s *OrderService) ListOrdersByUser(ctx context.Context, userID int64, page, perPage int) ([]domain.OrderView, int, error) {
	return s.ListOrders(ctx, repository.OrderFilter{UserID: &userID, Page: page, PerPage: perPage})
}

// UpdateOrder applies a partial update and refreshes UpdatedAt.
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, input UpdateOrderInput) (*domain.Order, error) {
	if input.Status != nil {
		if err := validateStatus(*input.Status); err != nil {
			return nil, err
		}
	}
	existing, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if input.DeliveryID != nil {
		if _, err := s.deliveries.GetByID(ctx, *input.DeliveryID); err != nil {
			return nil, fmt.Errorf("update order: %w", err)
		}
	}

	updated, err := s.orders.Update(ctx, id, repository.OrderUpdate{
		Status:     input.Status,
		DeliveryID: input.DeliveryID,
	})
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if err := s.producer.PublishOrderUpdated(ctx, updated, existing.Status); err != nil {
		logPublishFailure(ctx, s.logger, "order.updated", err, slog.Int64("order_id", id))
	}

	s.logger.InfoContext(ctx, "order updated",
		slog.Int64("order_id", id),
		slog.String("old_status", existing.Status),
		slog.String("new_status", updated.Status),
	)
	return updated, nil
}

// AttachDelivery creates a delivery for the order and makes it the order's
// delivery. Attaching again replaces the reference.
func (s *OrderService) AttachDelivery(ctx context.Context, orderID int64, input DeliveryInput) (*domain.Delivery, error) {
	input.OrderID = orderID
	d, err := input.toDelivery(0)
	if err != nil {
		return nil, err
	}

	if err := s.orders.AttachDelivery(ctx, orderID, d); err != nil {
		return nil, fmt.Errorf("attach delivery: %w", err)
	}

	if err := s.producer.PublishDeliveryAttached(ctx, d); err != nil {
		logPublishFailure(ctx, s.logger, "order.delivery_attached", err,
			slog.Int64("order_id", orderID),
			slog.Int64("delivery_id", d.ID),
		)
	}

	s.logger.InfoContext(ctx, "delivery attached",
		slog.Int64("order_id", orderID),
		slog.Int64("delivery_id", d.ID),
	)
	return d, nil
}

// ComputeTotal returns the current item total of the order. Delivery cost
// is not included.
func (s *OrderService) ComputeTotal(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("compute order total: %w", err)
	}
	catalog, err := loadCatalog(ctx, s.products, order.ProductIDs())
	if err != nil {
		return decimal.Zero, fmt.Errorf("compute order total: %w", err)
	}
	return order.TotalAmount(catalog.Price), nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.logger.InfoContext(ctx, "order deleted", slog.Int64("order_id", id))
	return nil
}

// --- Order items ---

// AddOrderItem appends a line to an existing order.
func (s *OrderService) AddOrderItem(ctx context.Context, input OrderItemInput) (*domain.OrderItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if _, err := s.orders.GetByID(ctx, input.OrderID); err != nil {
		return nil, fmt.Errorf("add order item: %w", err)
	}
	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, fmt.Errorf("add order item: %w", err)
	}

	item := &domain.OrderItem{
		OrderID:   input.OrderID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}
	if err := s.orders.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add order item: %w", err)
	}

	s.logger.InfoContext(ctx, "order item added",
		slog.Int64("order_id", item.OrderID),
		slog.Int64("item_id", item.ID),
		slog.Int64("product_id", item.ProductID),
		slog.Int("quantity", item.Quantity),
	)
	return item, nil
}

func (s *OrderService) GetOrderItem(ctx context.Context, id int64) (*domain.OrderItem, error) {
	item, err := s.orders.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order item: %w", err)
	}
	return item, nil
}

func (s *OrderService) ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return items, nil
}

// UpdateOrderItem replaces every field of the item.
func (s *OrderService) UpdateOrderItem(ctx context.Context, id int64, input OrderItemInput) (*domain.OrderItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	item := &domain.OrderItem{
		ID:        id,
		OrderID:   input.OrderID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}
	if err := s.orders.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update order item: %w", err)
	}

	s.logger.InfoContext(ctx, "order item updated",
		slog.Int64("item_id", id),
		slog.Int("quantity", item.Quantity),
	)
	return item, nil
}

func (s *OrderService) DeleteOrderItem(ctx context.Context, id int64) error {
	if err := s.orders.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	s.logger.InfoContext(ctx, "order item deleted", slog.Int64("item_id", id))
	return nil
}
