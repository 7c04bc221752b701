package domain

import "github.com/shopspring/decimal"

// DefaultQuantity is used when an item is added without a quantity.
const DefaultQuantity = 1

// Cart belongs to exactly one user. Its total is never stored.
type Cart struct {
	ID     int64      `json:"id"`
	UserID int64      `json:"user_id"`
	Items  []CartItem `json:"items"`
}

// CartItem is one line in a cart. Adding the same product twice produces
// two lines.
type CartItem struct {
	ID        int64 `json:"id"`
	CartID    int64 `json:"cart_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Lines returns the cart's items in pricing form.
func (c *Cart) Lines() []Line {
	lines := make([]Line, len(c.Items))
	for i, it := range c.Items {
		lines[i] = Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return lines
}

// TotalPrice is Σ quantity × current price. Unresolved products count as 0.
func (c *Cart) TotalPrice(lookup PriceLookup) decimal.Decimal {
	return Total(c.Lines(), lookup)
}

// ProductIDs returns the distinct products referenced by the cart.
func (c *Cart) ProductIDs() []int64 {
	return distinctProductIDs(c.Lines())
}

// CartView is a cart priced against a catalog snapshot.
type CartView struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []LineView      `json:"items"`
}

// PriceCart builds the read view of c using the prices in catalog.
func PriceCart(c *Cart, catalog Catalog) CartView {
	v := CartView{
		ID:         c.ID,
		UserID:     c.UserID,
		TotalPrice: c.TotalPrice(catalog.Price),
		Items:      make([]LineView, len(c.Items)),
	}
	for i, it := range c.Items {
		v.Items[i] = catalog.priceLine(it.ID, Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return v
}

func distinctProductIDs(lines []Line) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
