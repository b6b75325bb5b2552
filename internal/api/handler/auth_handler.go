package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/apiauth/account-service/internal/api/metrics"
	"github.com/apiauth/account-service/internal/core/domain"
	"github.com/apiauth/account-service/internal/core/ports"
)

// AuthHandler handles the anonymous routes: login and registration.
type AuthHandler struct {
	accounts ports.AccountService
	audit    AuditSink
}

func NewAuthHandler(accounts ports.AccountService, audit AuditSink) *AuthHandler {
	return &AuthHandler{accounts: accounts, audit: audit}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// registerRequest uses pointers for the fields whose absence is a distinct
// failure from emptiness.
type registerRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	Email    string  `json:"email,omitempty"`
}

// loginResponse is the public user view: identity fields plus the issued
// token, never the stored credential.
type loginResponse struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Token    string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login authenticates a user and returns the public user view with a token.
//
// @Summary      Login with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	start := time.Now()
	view, err := h.accounts.Login(c.Request().Context(), req.Username, req.Password)
	metrics.LoginDuration.Observe(time.Since(start).Seconds())
	metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
	h.record(c, req.Username, domain.AuditActionLogin, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Username: view.Username,
		FullName: view.FullName,
		Email:    view.Email,
		Token:    view.Token,
	})
}

// Register creates a new user account. Registration does not log the user
// in; no token is issued.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	_, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
	})
	metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
	h.record(c, derefOr(req.Username, ""), domain.AuditActionRegister, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "user registered successfully"})
}

func (h *AuthHandler) record(c echo.Context, username, action string, err error) {
	if h.audit == nil {
		return
	}
	h.audit.Enqueue(ports.AuditEventInput{
		Username:  username,
		Action:    action,
		Outcome:   outcome(err),
		RemoteIP:  c.RealIP(),
		Timestamp: time.Now().UTC(),
	})
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountDisabled):
		return "disabled"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}

func registerResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, domain.ErrPasswordTooShort):
		return "password_too_short"
	case errors.Is(err, domain.ErrUsernameTooShort):
		return "username_too_short"
	case errors.Is(err, domain.ErrMissingFullName):
		return "missing_full_name"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, domain.ErrEmailTaken):
		return "email_taken"
	default:
		return "error"
	}
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return err.Error()
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
