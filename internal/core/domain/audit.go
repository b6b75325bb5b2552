package domain

import "time"

// Audit actions recorded by the account service.
const (
	AuditActionLogin    = "login"
	AuditActionRegister = "register"
	AuditActionUpdate   = "update"
	AuditActionDelete   = "delete"
)

// AuditEvent records the outcome of a single account operation for the
// security audit trail. Events are written asynchronously and never affect
// the outcome of the operation they describe.
type AuditEvent struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"` // "success" or a short failure reason
	Actor     string    `json:"actor,omitempty"`
	RemoteIP  string    `json:"remote_ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
