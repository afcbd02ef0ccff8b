package domain

import (
	"errors"
	"time"
)

const (
	RoleCitizen = "citizen"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

const (
	UserActive  = "active"
	UserBlocked = "blocked"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// User models an account in the system, keyed by email. The Premium flag is
// shared mutable state: it is only ever written by payment reconciliation.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	Premium      bool      `json:"premium"`
	CreatedAt    time.Time `json:"created_at"`
}

// Blocked reports whether the account is barred from acting (e.g. voting).
func (u *User) Blocked() bool {
	return u.Status == UserBlocked
}
