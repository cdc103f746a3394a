package entity

import "slices"

// Role represents the type of role an account can have in the catalog.
type Role string

const (
	// RoleAdmin indicates a system administrator.
	RoleAdmin Role = "admin"
	// RoleLibrarian indicates library staff.
	RoleLibrarian Role = "librarian"
	// RoleStudent indicates a regular borrower.
	RoleStudent Role = "student"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleStudent:
		return true
	default:
		return false
	}
}

// Roles is a slice of Role used as a per-route allowed set. There is no
// implicit hierarchy: a route that librarians and admins may use lists both.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}
