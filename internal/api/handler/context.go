package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/apiauth/account-service/internal/core/ports"
)

// identity extracts the caller identity injected by the Auth middleware. An
// empty username means the token carried no usable identity; handlers map
// that to domain.ErrIdentityUnresolved. The username here is the only
// identity the workflow engine ever acts on for self-service routes.
func identity(c echo.Context) (username, role string) {
	username, _ = c.Get("username").(string)
	role, _ = c.Get("role").(string)
	return username, role
}

// AuditSink accepts audit events for asynchronous persistence. Implemented
// by the queue dispatcher; a nil sink disables auditing.
type AuditSink interface {
	Enqueue(event ports.AuditEventInput)
}
