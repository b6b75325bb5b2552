package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Registration validation errors, in the order the rules are applied.
var (
	ErrMalformedInput   = errors.New("registration payload is incomplete")
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
	ErrUsernameTooShort = errors.New("username must be at least 4 characters")
	ErrMissingFullName  = errors.New("full name must not be empty")
	ErrUsernameTaken    = errors.New("username already registered")
	ErrEmailTaken       = errors.New("email already registered")
)

// Authentication and account-management errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrUserNotFound       = errors.New("user not found")
	ErrIdentityUnresolved = errors.New("could not resolve caller identity")
	ErrRegistrationFailed = errors.New("could not register user")
	ErrUpdateFailed       = errors.New("could not update user")
	ErrDeleteFailed       = errors.New("could not delete user")
)

// User models an account in the system. Username and Email are unique across
// all users; Enabled gates login. PasswordHash is never marshalled outward.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"enabled"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user carries the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
