package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Field limits for deliveries.
const (
	MaxAddressLength = 256
	MaxMethodLength  = 64
)

var (
	errNegativeCost   = errors.New("delivery cost must not be negative")
	errInvertedWindow = errors.New("delivery end date must not be before start date")
)

// Delivery ships one order. UserID is the recipient, which may differ from
// the user who placed the order.
type Delivery struct {
	ID        int64           `json:"id"`
	Address   string          `json:"address"`
	Method    string          `json:"method"`
	Cost      decimal.Decimal `json:"cost"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	OrderID   int64           `json:"order_id"`
	UserID    *int64          `json:"user_id,omitempty"`
}

// Validate checks the cost and the date window.
func (d *Delivery) Validate() error {
	if d.Cost.IsNegative() {
		return errNegativeCost
	}
	if !d.StartDate.IsZero() && !d.EndDate.IsZero() && d.EndDate.Before(d.StartDate) {
		return errInvertedWindow
	}
	return nil
}

// DeliverySummary is the short form embedded in order views.
type DeliverySummary struct {
	ID        int64           `json:"id"`
	Address   string          `json:"address"`
	Method    string          `json:"method"`
	Cost      decimal.Decimal `json:"cost"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
}

func (d *Delivery) Summary() DeliverySummary {
	return DeliverySummary{
		ID:        d.ID,
		Address:   d.Address,
		Method:    d.Method,
		Cost:      d.Cost,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
	}
}
