package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/apiauth/account-service/internal/core/domain"
	"github.com/apiauth/account-service/internal/core/ports"
)

const (
	minPasswordLen = 4
	minUsernameLen = 4
)

// LoginThrottle abstracts the failed-login counter (Redis). A nil throttle
// disables throttling entirely.
type LoginThrottle interface {
	// TooMany reports whether the username has exceeded the failure budget.
	TooMany(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// AccountService orchestrates login, registration, account edits, deletion
// and identity introspection. It holds no state of its own; every request is
// an independent transaction against the user repository.
type AccountService struct {
	repo       ports.UserRepository
	issuer     ports.TokenIssuer
	throttle   LoginThrottle
	bcryptCost int
	log        zerolog.Logger
}

func NewAccountService(
	repo ports.UserRepository,
	issuer ports.TokenIssuer,
	throttle LoginThrottle,
	bcryptCost int,
	log zerolog.Logger,
) *AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		repo:       repo,
		issuer:     issuer,
		throttle:   throttle,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Login verifies the credentials and returns a public user view carrying a
// freshly issued token. An unknown username and a wrong password are both
// reported as domain.ErrInvalidCredentials so callers cannot enumerate
// accounts; a disabled account is deliberately distinguishable.
func (s *AccountService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if s.throttle != nil {
		locked, err := s.throttle.TooMany(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, proceeding")
		} else if locked {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, username)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !user.Enabled {
		return nil, domain.ErrAccountDisabled
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
		}
	}

	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("user logged in")

	return &ports.LoginResult{
		Username: user.Username,
		FullName: user.FullName,
		Email:    user.Email,
		Token:    token,
	}, nil
}

// Register validates the input rules in fixed order (first failure wins) and
// creates the account. The uniqueness pre-checks are advisory: a duplicate
// slipping past them is still caught by the repository's unique constraints
// at create time and surfaces as the same taken-username/email error.
func (s *AccountService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.Username == nil || input.Password == nil || input.FullName == nil {
		return nil, domain.ErrMalformedInput
	}
	username, password, fullName := *input.Username, *input.Password, *input.FullName

	// Length rules count characters, not bytes, so multibyte input is not
	// inflated past the minimum.
	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, domain.ErrPasswordTooShort
	}
	if utf8.RuneCountInString(username) < minUsernameLen {
		return nil, domain.ErrUsernameTooShort
	}
	if fullName == "" {
		return nil, domain.ErrMissingFullName
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup username: %w", err)
	}

	if input.Email != "" {
		if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
			return nil, domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("register: lookup email: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		FullName:     fullName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Enabled:      true,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		// Commit-time uniqueness violations keep their specific error.
		if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		s.log.Error().Err(err).Str("username", username).Msg("failed to create user")
		return nil, domain.ErrRegistrationFailed
	}

	s.log.Info().Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AccountService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}
