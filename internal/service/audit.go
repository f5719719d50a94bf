package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/calleja/taskforge/internal/domain"
)

// AuditRecorder appends audit entries. Sink failures are logged and
// swallowed; an audit outage must never fail the action it records.
type AuditRecorder struct {
	repo domain.AuditRepository
}

// NewAuditRecorder creates a new audit recorder
func NewAuditRecorder(repo domain.AuditRepository) *AuditRecorder {
	return &AuditRecorder{repo: repo}
}

// Record appends one entry for a completed state-changing action
func (a *AuditRecorder) Record(ctx context.Context, tenantID *uuid.UUID, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, ip string) {
	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  ip,
		CreatedAt:  time.Now(),
	}

	if err := a.repo.Insert(ctx, entry); err != nil {
		log.Warn().
			Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Str("entity_id", entityID.String()).
			Msg("failed to write audit entry")
	}
}
