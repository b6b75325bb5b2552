package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/apiauth/account-service/internal/core/domain"
	"github.com/apiauth/account-service/internal/core/ports"
)

// UpdateAsAdmin edits an arbitrary account keyed by the target username.
// Registration's field-level rules are not re-applied here; the payload is
// merged onto the stored record as-is.
func (s *AccountService) UpdateAsAdmin(ctx context.Context, username string, input ports.UpdateInput) (*domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("admin update: lookup: %w", err)
	}

	if err := s.applyEdit(user, input, true); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, username, user)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("failed to update user")
		return nil, domain.ErrUpdateFailed
	}

	s.log.Info().Str("username", username).Msg("user updated by administrator")
	return updated, nil
}

// UpdateSelf edits the caller's own account. The target username is the
// identity resolved from the caller's token; any username carried in the
// payload is ignored, so a caller can never edit another account this way.
// The self path may not change role or enabled state.
func (s *AccountService) UpdateSelf(ctx context.Context, identity string, input ports.UpdateInput) (*domain.User, error) {
	if identity == "" {
		return nil, domain.ErrIdentityUnresolved
	}

	user, err := s.repo.FindByUsername(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUpdateFailed
		}
		return nil, fmt.Errorf("self update: lookup: %w", err)
	}

	if err := s.applyEdit(user, input, false); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, identity, user)
	if err != nil {
		s.log.Error().Err(err).Str("username", identity).Msg("failed to update own account")
		return nil, domain.ErrUpdateFailed
	}

	s.log.Info().Str("username", identity).Msg("user updated own account")
	return updated, nil
}

// Delete removes an account by username. A miss and a backend failure are
// both reported as domain.ErrDeleteFailed, on first and repeated calls alike.
func (s *AccountService) Delete(ctx context.Context, username string) error {
	deleted, err := s.repo.Delete(ctx, username)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("failed to delete user")
		return domain.ErrDeleteFailed
	}
	if !deleted {
		return domain.ErrDeleteFailed
	}

	s.log.Info().Str("username", username).Msg("user deleted")
	return nil
}

// CurrentUser returns the account record for the resolved caller identity.
func (s *AccountService) CurrentUser(ctx context.Context, identity string) (*domain.User, error) {
	if identity == "" {
		return nil, domain.ErrIdentityUnresolved
	}

	user, err := s.repo.FindByUsername(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("introspect: %w", err)
	}
	return user, nil
}

// applyEdit merges the non-zero fields of input onto user. Role and Enabled
// are only honoured on the administrator path.
func (s *AccountService) applyEdit(user *domain.User, input ports.UpdateInput, admin bool) error {
	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("update: hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if admin {
		if input.Role != "" {
			user.Role = input.Role
		}
		if input.Enabled != nil {
			user.Enabled = *input.Enabled
		}
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}
