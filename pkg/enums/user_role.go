package enums

import "fmt"

// UserRole maps to the user_role enum in Postgres.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleBrand UserRole = "brand"
	UserRoleDJ    UserRole = "dj"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleBrand,
	UserRoleDJ,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanAwardCredits reports whether the role may grant rating credits.
func (r UserRole) CanAwardCredits() bool {
	return r == UserRoleBrand || r == UserRoleAdmin
}

// CanBoost reports whether the role may spend credits on boosts.
func (r UserRole) CanBoost() bool {
	return !r.CanAwardCredits()
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
