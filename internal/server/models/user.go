// Package models defines the server-side data records persisted in the database.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the coarse authorization tier attached to an identity.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ErrUnknownRole is returned by ParseRole for names outside the enumeration.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps a role name onto the enumeration. Empty input yields RoleUser.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case "", RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid reports whether r is a member of the enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is an identity record. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	UserName     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"create_date"`
	UpdatedAt    time.Time `json:"update_date"`
}

// UserPatch carries a partial update. Nil fields keep their stored value.
type UserPatch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Active       *bool
	PasswordHash *string
}
