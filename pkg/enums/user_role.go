package enums

import (
	"fmt"
	"strings"
)

// UserRole gates access to the admin back office.
type UserRole string

const (
	UserRoleClient UserRole = "client"
	UserRoleAdmin  UserRole = "admin"
)

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	return r == UserRoleClient || r == UserRoleAdmin
}

// ParseUserRole converts raw input into a UserRole. Matching is case-insensitive.
func ParseUserRole(value string) (UserRole, error) {
	role := UserRole(strings.ToLower(strings.TrimSpace(value)))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid user role %q", value)
	}
	return role, nil
}
