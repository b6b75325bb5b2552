package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/apiauth/account-service/internal/core/domain"
)

func TestHTTPErrorHandler_DomainMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"malformed input", domain.ErrMalformedInput, http.StatusBadRequest},
		{"password too short", domain.ErrPasswordTooShort, http.StatusBadRequest},
		{"username too short", domain.ErrUsernameTooShort, http.StatusBadRequest},
		{"missing full name", domain.ErrMissingFullName, http.StatusBadRequest},
		{"username taken", domain.ErrUsernameTaken, http.StatusBadRequest},
		{"email taken", domain.ErrEmailTaken, http.StatusBadRequest},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusBadRequest},
		{"account disabled", domain.ErrAccountDisabled, http.StatusUnauthorized},
		{"identity unresolved", domain.ErrIdentityUnresolved, http.StatusUnauthorized},
		{"too many attempts", domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{"user not found", domain.ErrUserNotFound, http.StatusBadRequest},
		{"registration failed", domain.ErrRegistrationFailed, http.StatusBadRequest},
		{"update failed", domain.ErrUpdateFailed, http.StatusBadRequest},
		{"delete failed", domain.ErrDeleteFailed, http.StatusBadRequest},
	}

	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
		})
	}
}

func TestHTTPErrorHandler_UnknownUserAndWrongPasswordShareMessage(t *testing.T) {
	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	handler(domain.ErrInvalidCredentials, e.NewContext(req, rec))

	if !strings.Contains(rec.Body.String(), "invalid username or password") {
		t.Fatalf("unexpected message: %s", rec.Body.String())
	}
}

func TestHTTPErrorHandler_UnexpectedErrorIsGenericRejection(t *testing.T) {
	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	rec := httptest.NewRecorder()
	handler(errors.New("pq: SSL connection has been closed unexpectedly"), e.NewContext(req, rec))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	// Raw backend text must not leak to the caller.
	if strings.Contains(rec.Body.String(), "SSL connection") {
		t.Fatalf("backend error leaked: %s", rec.Body.String())
	}
}

func TestHTTPErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	handler(echo.NewHTTPError(http.StatusNotFound, "not found"), e.NewContext(req, rec))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
