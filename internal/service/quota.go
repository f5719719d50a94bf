package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/calleja/taskforge/internal/domain"
)

// QuotaGuard answers whether a tenant may create another resource of a
// class. It is advisory: the create paths re-check the ceiling inside their
// insert transaction, so a stale answer here cannot oversell the plan.
type QuotaGuard struct {
	tenantRepo domain.TenantRepository
}

// NewQuotaGuard creates a new quota guard
func NewQuotaGuard(tenantRepo domain.TenantRepository) *QuotaGuard {
	return &QuotaGuard{tenantRepo: tenantRepo}
}

// CanCreate reports whether the tenant is below its ceiling for the class
func (g *QuotaGuard) CanCreate(ctx context.Context, tenantID uuid.UUID, class domain.ResourceClass) (bool, error) {
	tenant, err := g.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return false, fmt.Errorf("failed to get tenant: %w", err)
	}
	if tenant == nil {
		return false, domain.ErrTenantNotFound
	}

	current, err := g.tenantRepo.CountResources(ctx, tenantID, class)
	if err != nil {
		return false, fmt.Errorf("failed to count %s: %w", class, err)
	}

	var max int
	switch class {
	case domain.ResourceUsers:
		max = tenant.MaxUsers
	case domain.ResourceProjects:
		max = tenant.MaxProjects
	default:
		return false, fmt.Errorf("unknown resource class %q", class)
	}

	return current < max, nil
}
