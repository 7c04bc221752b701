package domain

// Field limits for categories.
const (
	MaxCategoryNameLength        = 64
	MaxCategoryDescriptionLength = 256
)

// Category groups products. Membership is many-to-many and owned by
// neither side.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
