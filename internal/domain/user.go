package domain

import "time"

// Field limits for users.
const (
	MaxUsernameLength = 64
	MaxNameLength     = 128
	MaxPasswordLength = 64
	MaxEmailLength    = 254
	MaxPhoneLength    = 32

	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
)

// User is the aggregate root. Every user owns exactly one Cart and one
// Wishlist, created together with it.
type User struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	Name             string     `json:"name"`
	PasswordHash     string     `json:"-"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone,omitempty"`
	Role             Role       `json:"role"`
	RegistrationDate time.Time  `json:"registration_date"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
}

// UserProfile is a user with the ids of its owned children and the sizes
// of the collections it references.
type UserProfile struct {
	User
	CartID        int64 `json:"cart_id"`
	WishlistID    int64 `json:"wishlist_id"`
	OrderCount    int   `json:"order_count"`
	ReviewCount   int   `json:"review_count"`
	DeliveryCount int   `json:"delivery_count"`
}

// UserSummary is the short form embedded in order views.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Summary returns the short form of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email}
}
