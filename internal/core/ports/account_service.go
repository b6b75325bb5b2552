package ports

import (
	"context"

	"github.com/apiauth/account-service/internal/core/domain"
)

// RegisterInput carries a registration request. Username, Password and
// FullName are pointers so the engine can tell an absent field from an empty
// one: absence fails the presence rule, emptiness fails the field's own rule.
type RegisterInput struct {
	Username *string
	Password *string
	FullName *string
	Email    string
}

// UpdateInput carries an account edit. Zero-valued fields are left untouched
// (merge semantics); Enabled is a pointer so "set to false" is expressible.
type UpdateInput struct {
	FullName string
	Email    string
	Password string
	Role     string
	Enabled  *bool
}

// LoginResult is the public projection of a user returned on successful
// login. It deliberately carries no credential material.
type LoginResult struct {
	Username string
	FullName string
	Email    string
	Token    string
}

// AccountService defines the authentication and account-management
// workflows. Callers' identity and role are resolved by the HTTP layer and
// passed in explicitly; the engine never reads them from request payloads.
type AccountService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// UpdateAsAdmin edits an arbitrary account, keyed by target username.
	UpdateAsAdmin(ctx context.Context, username string, input UpdateInput) (*domain.User, error)
	// UpdateSelf edits the caller's own account. Identity must be the
	// username resolved from the caller's token, never from the payload.
	UpdateSelf(ctx context.Context, identity string, input UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, username string) error
	// CurrentUser returns the account record for the resolved identity.
	CurrentUser(ctx context.Context, identity string) (*domain.User, error)
}
