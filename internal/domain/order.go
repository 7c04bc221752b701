package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Conventional order status labels. Status is free text: any string may be
// stored and no transition is enforced.
const (
	OrderStatusPending   = "Pending"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
)

// DefaultOrderStatus is used when an order is created without a status.
const DefaultOrderStatus = OrderStatusPending

// MaxOrderStatusLength bounds Order.Status.
const MaxOrderStatusLength = 64

// Order is placed by a user and references at most one delivery.
type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	DeliveryID *int64      `json:"delivery_id,omitempty"`
	Status     string      `json:"status"`
	Items      []OrderItem `json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderItem is one line in an order.
type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Lines returns the order's items in pricing form.
func (o *Order) Lines() []Line {
	lines := make([]Line, len(o.Items))
	for i, it := range o.Items {
		lines[i] = Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return lines
}

// TotalAmount uses the same rule as Cart.TotalPrice. Delivery cost is not
// part of it.
func (o *Order) TotalAmount(lookup PriceLookup) decimal.Decimal {
	return Total(o.Lines(), lookup)
}

// ProductIDs returns the distinct products referenced by the order.
func (o *Order) ProductIDs() []int64 {
	return distinctProductIDs(o.Lines())
}

// OrderView is an order priced against a catalog snapshot, with summaries of
// the user and the delivery when they are known.
type OrderView struct {
	ID          int64            `json:"id"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	UserID      int64            `json:"user_id"`
	User        *UserSummary     `json:"user,omitempty"`
	DeliveryID  *int64           `json:"delivery_id,omitempty"`
	Delivery    *DeliverySummary `json:"delivery,omitempty"`
	Items       []LineView       `json:"items"`
}

// PriceOrder builds the read view of o. user and delivery may be nil.
func PriceOrder(o *Order, catalog Catalog, user *User, delivery *Delivery) OrderView {
	v := OrderView{
		ID:          o.ID,
		TotalAmount: o.TotalAmount(catalog.Price),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		UserID:      o.UserID,
		DeliveryID:  o.DeliveryID,
		Items:       make([]LineView, len(o.Items)),
	}
	if user != nil {
		s := user.Summary()
		v.User = &s
	}
	if delivery != nil {
		s := delivery.Summary()
		v.Delivery = &s
	}
	for i, it := range o.Items {
		v.Items[i] = catalog.priceLine(it.ID, Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return v
}
