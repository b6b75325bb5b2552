package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/apiauth/account-service/internal/core/domain"
	"github.com/apiauth/account-service/internal/core/ports"
)

type stubUserRepo struct {
	users   map[string]*domain.User
	lookups int
	// createErr, when set, is returned by Create even if the pre-checks passed.
	createErr error
	updateErr error
	deleteErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.lookups++
	if u, ok := r.users[username]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.lookups++
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUsernameTaken
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = user.Username
	}
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) Update(_ context.Context, username string, user *domain.User) (*domain.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if _, ok := r.users[username]; !ok {
		return nil, domain.ErrUserNotFound
	}
	delete(r.users, username)
	r.users[user.Username] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, username string) (bool, error) {
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	if _, ok := r.users[username]; !ok {
		return false, nil
	}
	delete(r.users, username)
	return true, nil
}

type stubIssuer struct {
	err error
}

func (s *stubIssuer) Issue(user *domain.User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-" + user.Username, nil
}

type stubThrottle struct {
	failures map[string]int
	max      int
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), max: max}
}

func (t *stubThrottle) TooMany(_ context.Context, username string) (bool, error) {
	return t.failures[username] >= t.max, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	delete(t.failures, username)
	return nil
}

func newService(repo *stubUserRepo, throttle LoginThrottle) *AccountService {
	return NewAccountService(repo, &stubIssuer{}, throttle, bcrypt.MinCost, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func registerInput(username, password, fullName, email string) ports.RegisterInput {
	return ports.RegisterInput{
		Username: strPtr(username),
		Password: strPtr(password),
		FullName: strPtr(fullName),
		Email:    email,
	}
}

func mustRegister(t *testing.T, svc *AccountService, username, password, fullName, email string) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), registerInput(username, password, fullName, email))
	if err != nil {
		t.Fatalf("register %s failed: %v", username, err)
	}
	return user
}

func TestRegister_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newService(repo, nil)

	user := mustRegister(t, svc, "alice", "secret", "Alice A", "a@x.com")

	if user.PasswordHash == "secret" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if !user.Enabled {
		t.Fatalf("new accounts must be enabled")
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", user.Role)
	}
}

func TestRegister_RuleOrder(t *testing.T) {
	tests := []struct {
		name  string
		input ports.RegisterInput
		want  error
	}{
		{"missing username", ports.RegisterInput{Password: strPtr("secret"), FullName: strPtr("A B")}, domain.ErrMalformedInput},
		{"missing password", ports.RegisterInput{Username: strPtr("alice"), FullName: strPtr("A B")}, domain.ErrMalformedInput},
		{"missing full name", ports.RegisterInput{Username: strPtr("alice"), Password: strPtr("secret")}, domain.ErrMalformedInput},
		// Password length is checked before username length.
		{"both too short", registerInput("al", "ab", "A B", ""), domain.ErrPasswordTooShort},
		{"password too short", registerInput("alice", "abc", "A B", ""), domain.ErrPasswordTooShort},
		// Multibyte runes count as one character each, not per byte.
		{"3-char multibyte password", registerInput("alice", "abé", "A B", ""), domain.ErrPasswordTooShort},
		{"username too short", registerInput("al", "secret", "A B", ""), domain.ErrUsernameTooShort},
		{"2-char multibyte username", registerInput("日本", "secret", "A B", ""), domain.ErrUsernameTooShort},
		{"4-char multibyte username ok", registerInput("日本語版", "secret", "A B", ""), nil},
		{"empty full name", registerInput("alice", "secret", "", ""), domain.ErrMissingFullName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(newStubUserRepo(), nil)
			if _, err := svc.Register(context.Background(), tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegister_PresenceCheckedBeforeAnyLookup(t *testing.T) {
	repo := newStubUserRepo()
	svc := newService(repo, nil)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Password: strPtr("secret")})
	_, _ = svc.Register(context.Background(), registerInput("al", "ab", "A B", ""))

	if repo.lookups != 0 {
		t.Fatalf("expected no repository lookups before validation, got %d", repo.lookups)
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newService(repo, nil)

	mustRegister(t, svc, "alice", "secret", "Alice A", "a@x.com")

	if _, err := svc.Register(context.Background(), registerInput("alice", "other", "Alice B", "b@x.com")); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newService(repo, nil)

	mustRegister(t, svc, "alice", "secret", "Alice A", "a@x.com")

	if _, err := svc.Register(context.Background(), registerInput("alicia", "other", "Alice B", "a@x.com")); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_CommitTimeDuplicateKeepsSpecificError(t *testing.T) {
	// A concurrent registration can pass the pre-checks and still collide on
	// the unique constraint; the constraint error must come through as-is.
	repo := newStubUserRepo()
	repo.createErr = domain.ErrEmailTaken
	svc := newService(repo, nil)

	if _, err := svc.Register(context.Background(), registerInput("alice", "secret", "Alice A", "a@x.com")); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_BackendFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New("connection reset")
	svc := newService(repo, nil)

	if _, err := svc.Register(context.Background(), registerInput("alice", "secret", "Alice A", "")); !errors.Is(err, domain.ErrRegistrationFailed) {
		t.Fatalf("expected ErrRegistrationFailed, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newService(repo, nil)
	mustRegister(t, svc, "carol", "s3cret", "Carol C", "c@x.com")

	view, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if view.Token != "token-carol" {
		t.Fatalf("unexpected token: %s", view.Token)
	}
	if view.Username != "carol" || view.FullName != "Carol C" || view.Email != "c@x.com" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestLogin_UnknownUserAndWrongPasswordIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	svc := newService(repo, nil)
	mustRegister(t, svc, "alice", "secret", "Alice A", "")

	_, unknownErr := svc.Login(context.Background(), "ghost", "secret")
	_, wrongErr := svc.Login(context.Background(), "alice", "wrong")

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongErr)
	}
}

func TestLogin_DisabledAccountWinsOverCredentialCheck(t *testing.T) {
	repo := newStubUserRepo()
	svc := newService(repo, nil)
	mustRegister(t, svc, "alice", "secret", "Alice A", "")
	repo.users["alice"].Enabled = false

	// Even with the correct password the result is ErrAccountDisabled.
	if _, err := svc.Login(context.Background(), "alice", "secret"); !errors.Is(err, domain.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, domain.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled for wrong password too, got %v", err)
	}
}

func TestLogin_ThrottleLockout(t *testing.T) {
	repo := newStubUserRepo()
	throttle := newStubThrottle(3)
	svc := newService(repo, throttle)
	mustRegister(t, svc, "alice", "secret", "Alice A", "")

	for i := 0; i < 3; i++ {
		if _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	// Budget exhausted: even the correct password is rejected.
	if _, err := svc.Login(context.Background(), "alice", "secret"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestLogin_SuccessResetsThrottle(t *testing.T) {
	repo := newStubUserRepo()
	throttle := newStubThrottle(3)
	svc := newService(repo, throttle)
	mustRegister(t, svc, "alice", "secret", "Alice A", "")

	_, _ = svc.Login(context.Background(), "alice", "wrong")
	_, _ = svc.Login(context.Background(), "alice", "wrong")

	if _, err := svc.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if throttle.failures["alice"] != 0 {
		t.Fatalf("expected failure counter reset, got %d", throttle.failures["alice"])
	}
}

func TestLogin_IssuerFailure(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, &stubIssuer{err: errors.New("boom")}, nil, bcrypt.MinCost, zerolog.Nop())

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	repo.users["alice"] = &domain.User{Username: "alice", PasswordHash: string(hash), Enabled: true}

	if _, err := svc.Login(context.Background(), "alice", "secret"); err == nil {
		t.Fatalf("expected error when issuer fails")
	}
}
