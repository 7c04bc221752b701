package domain

import "github.com/shopspring/decimal"

// Line is one quantity of one product, the common shape of cart and order
// items as far as pricing is concerned.
type Line struct {
	ProductID int64
	Quantity  int
}

// PriceLookup resolves the current price of a product. ok is false when the
// product no longer exists.
type PriceLookup func(productID int64) (price decimal.Decimal, ok bool)

// LineTotal is quantity × price, or zero when the product is unresolved.
func LineTotal(quantity int, price decimal.Decimal, ok bool) decimal.Decimal {
	if !ok || quantity <= 0 {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Total sums the line totals of lines at the prices lookup reports right
// now. Nothing is cached, so a price change shows up on the next call.
func Total(lines []Line, lookup PriceLookup) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		price, ok := decimal.Zero, false
		if lookup != nil {
			price, ok = lookup(l.ProductID)
		}
		total = total.Add(LineTotal(l.Quantity, price, ok))
	}
	return total
}

// Catalog is a product snapshot keyed by id, loaded once per read.
type Catalog map[int64]Product

// NewCatalog indexes products by id.
func NewCatalog(products []Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// Price implements PriceLookup.
func (c Catalog) Price(productID int64) (decimal.Decimal, bool) {
	p, ok := c[productID]
	if !ok {
		return decimal.Zero, false
	}
	return p.Price, true
}

// LineView is a priced cart or order line.
type LineView struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

func (c Catalog) priceLine(id int64, l Line) LineView {
	p, ok := c[l.ProductID]
	return LineView{
		ID:          id,
		ProductID:   l.ProductID,
		ProductName: p.Name,
		Price:       p.Price,
		Quantity:    l.Quantity,
		LineTotal:   LineTotal(l.Quantity, p.Price, ok),
	}
}
