package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/OnlineStore/internal/domain"
	pkgkafka "github.com/utafrali/OnlineStore/pkg/kafka"
	"github.com/utafrali/OnlineStore/pkg/logger"
)

// Kafka topics for store domain events.
var (
	TopicUserRegistered        = pkgkafka.Topic("user", "registered")
	TopicProductUpdated        = pkgkafka.Topic("product", "updated")
	TopicOrderCreated          = pkgkafka.Topic("order", "created")
	TopicOrderUpdated          = pkgkafka.Topic("order", "updated")
	TopicOrderDeliveryAttached = pkgkafka.Topic("order", "delivery_attached")
	TopicReviewCreated         = pkgkafka.Topic("review", "created")
)

// Aggregate type constants.
const (
	AggregateTypeUser    = "user"
	AggregateTypeProduct = "product"
	AggregateTypeOrder   = "order"
	AggregateTypeReview  = "review"
)

// SourceOnlineStore identifies events written by this process.
const SourceOnlineStore = "online-store"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	CartID     int64  `json:"cart_id"`
	WishlistID int64  `json:"wishlist_id"`
}

// ProductUpdatedData is the payload for a product.updated event. Consumers
// holding priced views of carts or orders should reprice on it.
type ProductUpdatedData struct {
	ProductID   int64           `json:"product_id"`
	Article     string          `json:"article"`
	Price       decimal.Decimal `json:"price"`
	CategoryIDs []int64         `json:"category_ids,omitempty"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID    int64     `json:"order_id"`
	UserID     int64     `json:"user_id"`
	DeliveryID *int64    `json:"delivery_id,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderUpdatedData is the payload for an order.updated event.
type OrderUpdatedData struct {
	OrderID    int64  `json:"order_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	DeliveryID *int64 `json:"delivery_id,omitempty"`
}

// DeliveryAttachedData is the payload for an order.delivery_attached event.
type DeliveryAttachedData struct {
	OrderID    int64           `json:"order_id"`
	DeliveryID int64           `json:"delivery_id"`
	Method     string          `json:"method"`
	Cost       decimal.Decimal `json:"cost"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ReviewID  int64 `json:"review_id"`
	ProductID int64 `json:"product_id"`
	AuthorID  int64 `json:"author_id"`
	Rating    int   `json:"rating"`
}

// Publisher is the part of pkg/kafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes store domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic string, aggregateID int64, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, strconv.FormatInt(aggregateID, 10), aggregateType, SourceOnlineStore, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.Int64("aggregate_id", aggregateID),
	)
	return nil
}

// PublishUserRegistered announces a new user with its cart and wishlist.
func (p *Producer) PublishUserRegistered(ctx context.Context, u *domain.UserProfile) error {
	return p.publish(ctx, TopicUserRegistered, u.ID, AggregateTypeUser, UserRegisteredData{
		UserID:     u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       string(u.Role),
		CartID:     u.CartID,
		WishlistID: u.WishlistID,
	})
}

// PublishProductUpdated announces a catalog change, price included.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, ProductUpdatedData{
		ProductID:   product.ID,
		Article:     product.Article,
		Price:       product.Price,
		CategoryIDs: product.CategoryIDs,
	})
}

func (p *Producer) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, TopicOrderCreated, o.ID, AggregateTypeOrder, OrderCreatedData{
		OrderID:    o.ID,
		UserID:     o.UserID,
		DeliveryID: o.DeliveryID,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
	})
}

func (p *Producer) PublishOrderUpdated(ctx context.Context, o *domain.Order, oldStatus string) error {
	return p.publish(ctx, TopicOrderUpdated, o.ID, AggregateTypeOrder, OrderUpdatedData{
		OrderID:    o.ID,
		OldStatus:  oldStatus,
		NewStatus:  o.Status,
		DeliveryID: o.DeliveryID,
	})
}

func (p *Producer) PublishDeliveryAttached(ctx context.Context, d *domain.Delivery) error {
	return p.publish(ctx, TopicOrderDeliveryAttached, d.OrderID, AggregateTypeOrder, DeliveryAttachedData{
		OrderID:    d.OrderID,
		DeliveryID: d.ID,
		Method:     d.Method,
		Cost:       d.Cost,
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
	})
}

func (p *Producer) PublishReviewCreated(ctx context.Context, r *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, r.ID, AggregateTypeReview, ReviewCreatedData{
		ReviewID:  r.ID,
		ProductID: r.ProductID,
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
	})
}
