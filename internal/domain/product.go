package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field limits enforced by the schema and the request validators.
const (
	MaxArticleLength     = 11
	MaxProductNameLength = 64
	MaxDescriptionLength = 256
)

// Product is a catalog entry. Its Price is the base of every derived total.
type Product struct {
	ID          int64           `json:"id"`
	Article     string          `json:"article"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	MediaURLs   []string        `json:"media_urls"`
	CategoryIDs []int64         `json:"category_ids"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductDetails is the catalog view of a single product.
type ProductDetails struct {
	Product
	Categories    []Category `json:"categories"`
	Reviews       []Review   `json:"reviews"`
	AverageRating float64    `json:"average_rating"`
}

// DiffCategories compares the current membership with the requested one and
// returns the ids to insert and the ids to delete. Duplicates and
// non-positive ids in next are ignored.
func DiffCategories(current, next []int64) (add, remove []int64) {
	have := make(map[int64]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}

	want := make(map[int64]struct{}, len(next))
	for _, id := range next {
		if id <= 0 {
			continue
		}
		if _, dup := want[id]; dup {
			continue
		}
		want[id] = struct{}{}
		if _, ok := have[id]; !ok {
			add = append(add, id)
		}
	}

	for _, id := range current {
		if _, ok := want[id]; !ok {
			remove = append(remove, id)
		}
	}
	return add, remove
}
