package ports

import (
	"context"

	"github.com/apiauth/account-service/internal/core/domain"
)

// UserRepository defines the persistence operations for user accounts (the
// credential store). Implementations must enforce username and email
// uniqueness at commit time; Create returns domain.ErrUsernameTaken or
// domain.ErrEmailTaken when a unique constraint is violated.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update persists the given user keyed by username and returns the stored
	// record, or domain.ErrUserNotFound when no such user exists.
	Update(ctx context.Context, username string, user *domain.User) (*domain.User, error)
	// Delete removes the user and reports whether a record was actually removed.
	Delete(ctx context.Context, username string) (bool, error)
}
