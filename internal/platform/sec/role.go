// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// RoleAdmin can read every corpus regardless of ownership links.
	RoleAdmin UserRole = "admin"

	// RoleMember is the default role; access is granted per corpus.
	RoleMember UserRole = "member"
)

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
