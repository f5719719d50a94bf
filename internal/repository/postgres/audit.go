package postgres

import (
	"context"
	"fmt"

	"github.com/calleja/taskforge/internal/domain"
)

// AuditRepository appends audit rows. There is no read path from the
// application; the table is queried out of band.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert appends an audit entry
func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO audit_logs (id, tenant_id, actor_id, action, entity_type, entity_id, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		entry.ID,
		entry.TenantID,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.IPAddress,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}
