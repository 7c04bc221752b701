package domain

import "strings"

// Role is the access level assigned to a user.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleCustomer Role = "Customer"
	RoleGuest    Role = "Guest"
)

// DefaultRole is assigned when a user is created without one.
const DefaultRole = RoleGuest

// ValidRoles returns every role in privilege order.
func ValidRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleCustomer, RoleGuest}
}

// IsValidRole checks if a role string is one of the known roles.
func IsValidRole(role string) bool {
	_, ok := ParseRole(role)
	return ok
}

// ParseRole matches role case-insensitively. An empty string yields
// DefaultRole.
func ParseRole(role string) (Role, bool) {
	role = strings.TrimSpace(role)
	if role == "" {
		return DefaultRole, true
	}
	for _, r := range ValidRoles() {
		if strings.EqualFold(string(r), role) {
			return r, true
		}
	}
	return "", false
}
