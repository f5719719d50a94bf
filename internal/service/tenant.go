package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calleja/taskforge/internal/authz"
	"github.com/calleja/taskforge/internal/domain"
	"github.com/calleja/taskforge/internal/security"
)

// TenantService handles tenant lifecycle operations
type TenantService struct {
	tenantRepo domain.TenantRepository
	audit      *AuditRecorder
}

// NewTenantService creates a new tenant service
func NewTenantService(tenantRepo domain.TenantRepository, audit *AuditRecorder) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		audit:      audit,
	}
}

// Register onboards a tenant together with its first admin in one
// transaction. On any failure neither row exists.
func (s *TenantService) Register(ctx context.Context, input domain.TenantRegister, ip string) (*domain.Tenant, *domain.User, error) {
	hash, err := security.HashPassword(input.AdminPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:               uuid.New(),
		Name:             input.TenantName,
		Subdomain:        strings.ToLower(input.Subdomain),
		Status:           domain.TenantActive,
		SubscriptionPlan: domain.PlanFree,
		MaxUsers:         domain.DefaultMaxUsers,
		MaxProjects:      domain.DefaultMaxProjects,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	admin := &domain.User{
		ID:           uuid.New(),
		TenantID:     &tenant.ID,
		Email:        strings.ToLower(input.AdminEmail),
		PasswordHash: hash,
		FullName:     input.AdminFullName,
		Role:         domain.RoleTenantAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.tenantRepo.Register(ctx, tenant, admin); err != nil {
		return nil, nil, err
	}

	s.audit.Record(ctx, &tenant.ID, admin.ID, domain.ActionRegisterTenant, "tenant", tenant.ID, ip)

	return tenant, admin, nil
}

// Get retrieves a tenant the caller is allowed to see
func (s *TenantService) Get(ctx context.Context, id domain.Identity, tenantID uuid.UUID) (*domain.Tenant, error) {
	if err := authz.Decide(id, authz.OpTenantRead, authz.Resource{TenantID: &tenantID}).Err(); err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}
	return tenant, nil
}

// Update applies a patch to a tenant. Only the name is open to tenant
// admins; plan, status and quota columns belong to platform operations.
func (s *TenantService) Update(ctx context.Context, id domain.Identity, tenantID uuid.UUID, patch domain.TenantUpdate, ip string) (*domain.Tenant, error) {
	if err := authz.Decide(id, authz.OpTenantUpdate, authz.Resource{TenantID: &tenantID}).Err(); err != nil {
		return nil, err
	}
	if patch.IsZero() {
		return nil, domain.ErrValidation
	}
	if patch.TouchesRestrictedFields() {
		return nil, domain.ErrInsufficientRole
	}

	tenant, err := s.tenantRepo.Update(ctx, tenantID, &patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}

	s.audit.Record(ctx, &tenantID, id.ID, domain.ActionUpdateTenant, "tenant", tenantID, ip)

	return tenant, nil
}

// List retrieves tenants across the platform, super admin only
func (s *TenantService) List(ctx context.Context, id domain.Identity, filter domain.TenantFilter) ([]domain.TenantSummary, int, error) {
	if err := authz.Decide(id, authz.OpTenantList, authz.Resource{}).Err(); err != nil {
		return nil, 0, err
	}

	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	tenants, total, err := s.tenantRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, total, nil
}

// Stats returns a tenant's resource counts
func (s *TenantService) Stats(ctx context.Context, id domain.Identity, tenantID uuid.UUID) (*domain.TenantStats, error) {
	if err := authz.Decide(id, authz.OpTenantRead, authz.Resource{TenantID: &tenantID}).Err(); err != nil {
		return nil, err
	}

	stats, err := s.tenantRepo.Stats(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant stats: %w", err)
	}
	return stats, nil
}
