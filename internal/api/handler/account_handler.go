package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/apiauth/account-service/internal/api/metrics"
	"github.com/apiauth/account-service/internal/core/domain"
	"github.com/apiauth/account-service/internal/core/ports"
)

// AccountHandler handles the authenticated account-management routes.
type AccountHandler struct {
	accounts ports.AccountService
	audit    AuditSink
}

func NewAccountHandler(accounts ports.AccountService, audit AuditSink) *AccountHandler {
	return &AccountHandler{accounts: accounts, audit: audit}
}

// updateRequest carries an account edit. It deliberately has no username
// field: the target is the path parameter (admin path) or the resolved token
// identity (self path), never the payload.
type updateRequest struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

func (r updateRequest) toInput() ports.UpdateInput {
	return ports.UpdateInput{
		FullName: r.FullName,
		Email:    r.Email,
		Password: r.Password,
		Role:     r.Role,
		Enabled:  r.Enabled,
	}
}

// UpdateAsAdmin edits an arbitrary account. The route is guarded by the RBAC
// middleware; only administrators reach this handler.
//
// @Summary      Edit any user account (administrator)
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string         true  "Target username"
// @Param        body      body      updateRequest  true  "Fields to change"
// @Success      200       {object}  messageResponse
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /admin/update/{username} [put]
func (h *AccountHandler) UpdateAsAdmin(c echo.Context) error {
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	target := c.Param("username")
	actor, _ := identity(c)

	_, err := h.accounts.UpdateAsAdmin(c.Request().Context(), target, req.toInput())
	metrics.UpdatesTotal.WithLabelValues("admin", resultLabel(err)).Inc()
	h.record(c, target, actor, domain.AuditActionUpdate, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "user updated successfully"})
}

// UpdateSelf edits the caller's own account, keyed by the identity resolved
// from the token. The path parameter and any identity in the payload are
// ignored.
//
// @Summary      Edit own account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string         true  "Ignored; kept for route compatibility"
// @Param        body      body      updateRequest  true  "Fields to change"
// @Success      200       {object}  messageResponse
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Router       /update/{username} [put]
func (h *AccountHandler) UpdateSelf(c echo.Context) error {
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	username, _ := identity(c)

	_, err := h.accounts.UpdateSelf(c.Request().Context(), username, req.toInput())
	metrics.UpdatesTotal.WithLabelValues("self", resultLabel(err)).Inc()
	h.record(c, username, username, domain.AuditActionUpdate, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "user updated successfully"})
}

// Delete removes an account. The route is guarded by the RBAC middleware.
//
// @Summary      Delete a user account (administrator)
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Target username"
// @Success      200       {object}  messageResponse
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /admin/delete/{username} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	target := c.Param("username")
	actor, _ := identity(c)

	err := h.accounts.Delete(c.Request().Context(), target)
	metrics.DeletesTotal.WithLabelValues(resultLabel(err)).Inc()
	h.record(c, target, actor, domain.AuditActionDelete, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted successfully"})
}

// Authenticated returns the account record of the caller. The stored
// credential is never part of the response.
//
// @Summary      Introspect the authenticated caller
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /authenticated [get]
func (h *AccountHandler) Authenticated(c echo.Context) error {
	username, _ := identity(c)

	user, err := h.accounts.CurrentUser(c.Request().Context(), username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AccountHandler) record(c echo.Context, username, actor, action string, err error) {
	if h.audit == nil {
		return
	}
	h.audit.Enqueue(ports.AuditEventInput{
		Username:  username,
		Action:    action,
		Outcome:   outcome(err),
		Actor:     actor,
		RemoteIP:  c.RealIP(),
		Timestamp: time.Now().UTC(),
	})
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return "error"
}
