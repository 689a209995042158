package domain

import (
	"slices"
	"time"
)

// Well-known roles. Stored without the "ROLE_" prefix some frameworks add.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string
	Username     string
	PasswordHash string   // argon2id PHC string, or bcrypt for imported accounts
	Roles        []string // Parsed from space-delimited storage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user holds role.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}
