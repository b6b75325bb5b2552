package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/apiauth/account-service/internal/core/domain"
	"github.com/apiauth/account-service/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists audit events to the
// given repository. Persistence failures are surfaced to the dispatcher,
// which logs them; they never affect the operation being audited.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single audit event.
func (s *auditService) Record(ctx context.Context, in ports.AuditEventInput) error {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	event := &domain.AuditEvent{
		Username:  in.Username,
		Action:    in.Action,
		Outcome:   in.Outcome,
		Actor:     in.Actor,
		RemoteIP:  in.RemoteIP,
		Timestamp: ts,
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	s.log.Debug().
		Str("username", in.Username).
		Str("action", in.Action).
		Str("outcome", in.Outcome).
		Msg("audit event recorded")

	return nil
}
