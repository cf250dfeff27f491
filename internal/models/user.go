// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Permission is a capability granted to a role.
type Permission string

const (
	PermRead        Permission = "read"
	PermWrite       Permission = "write"
	PermDelete      Permission = "delete"
	PermManageUsers Permission = "manage_users"
)

// rolePermissions maps each role to its granted capabilities.
var rolePermissions = map[Role][]Permission{
	RoleAdmin:  {PermRead, PermWrite, PermDelete, PermManageUsers},
	RoleEditor: {PermRead, PermWrite, PermDelete},
	RoleViewer: {PermRead},
}

// Can reports whether the role grants the given permission.
func (r Role) Can(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// User represents a CMS user account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"displayName"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
