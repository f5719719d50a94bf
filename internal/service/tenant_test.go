package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/calleja/taskforge/internal/domain"
	"github.com/calleja/taskforge/internal/security"
)

func TestTenantService_Register(t *testing.T) {
	ctx := context.Background()
	input := domain.TenantRegister{
		TenantName:    "Acme Corp",
		Subdomain:     "Acme",
		AdminEmail:    "Admin@Acme.com",
		AdminPassword: "s3cret-pass",
		AdminFullName: "Ada Admin",
	}

	t.Run("success", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		audit, auditRepo := quietAudit()
		svc := NewTenantService(tenantRepo, audit)

		tenantRepo.On("Register", ctx, mock.AnythingOfType("*domain.Tenant"), mock.AnythingOfType("*domain.User")).Return(nil)

		tenant, admin, err := svc.Register(ctx, input, "10.0.0.1")
		assert.NoError(t, err)

		assert.Equal(t, "acme", tenant.Subdomain)
		assert.Equal(t, domain.TenantActive, tenant.Status)
		assert.Equal(t, domain.PlanFree, tenant.SubscriptionPlan)
		assert.Equal(t, domain.DefaultMaxUsers, tenant.MaxUsers)
		assert.Equal(t, domain.DefaultMaxProjects, tenant.MaxProjects)

		assert.Equal(t, "admin@acme.com", admin.Email)
		assert.Equal(t, domain.RoleTenantAdmin, admin.Role)
		assert.True(t, admin.IsActive)
		assert.Equal(t, tenant.ID, *admin.TenantID)
		assert.True(t, security.VerifyPassword("s3cret-pass", admin.PasswordHash))

		auditRepo.AssertCalled(t, "Insert", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
			return e.Action == domain.ActionRegisterTenant && *e.TenantID == tenant.ID
		}))
	})

	t.Run("duplicate subdomain", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		audit, _ := quietAudit()
		svc := NewTenantService(tenantRepo, audit)

		tenantRepo.On("Register", ctx, mock.Anything, mock.Anything).Return(domain.ErrSubdomainTaken)

		_, _, err := svc.Register(ctx, input, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrSubdomainTaken)
	})
}

func TestTenantService_Get(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	otherID := uuid.New()
	tenant := &domain.Tenant{ID: tenantID, Name: "Acme"}

	tenantRepo := new(MockTenantRepository)
	audit, _ := quietAudit()
	svc := NewTenantService(tenantRepo, audit)
	tenantRepo.On("GetByID", ctx, tenantID).Return(tenant, nil)

	t.Run("member reads own tenant", func(t *testing.T) {
		id := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleUser}
		got, err := svc.Get(ctx, id, tenantID)
		assert.NoError(t, err)
		assert.Equal(t, tenant, got)
	})

	t.Run("cross-tenant read denied", func(t *testing.T) {
		id := domain.Identity{ID: uuid.New(), TenantID: &otherID, Role: domain.RoleTenantAdmin}
		_, err := svc.Get(ctx, id, tenantID)
		assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
	})

	t.Run("super admin reads any tenant", func(t *testing.T) {
		id := domain.Identity{ID: uuid.New(), Role: domain.RoleSuperAdmin}
		got, err := svc.Get(ctx, id, tenantID)
		assert.NoError(t, err)
		assert.Equal(t, tenant, got)
	})
}

func TestTenantService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	admin := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleTenantAdmin}
	name := "New Name"

	t.Run("admin renames tenant", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		audit, _ := quietAudit()
		svc := NewTenantService(tenantRepo, audit)

		updated := &domain.Tenant{ID: tenantID, Name: name}
		tenantRepo.On("Update", ctx, tenantID, mock.AnythingOfType("*domain.TenantUpdate")).Return(updated, nil)

		got, err := svc.Update(ctx, admin, tenantID, domain.TenantUpdate{Name: &name}, "10.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, name, got.Name)
	})

	t.Run("plan and quota columns are off limits", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		audit, _ := quietAudit()
		svc := NewTenantService(tenantRepo, audit)

		maxUsers := 500
		_, err := svc.Update(ctx, admin, tenantID, domain.TenantUpdate{MaxUsers: &maxUsers}, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrInsufficientRole)
		tenantRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("member may not update", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		audit, _ := quietAudit()
		svc := NewTenantService(tenantRepo, audit)

		member := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleUser}
		_, err := svc.Update(ctx, member, tenantID, domain.TenantUpdate{Name: &name}, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrInsufficientRole)
	})

	t.Run("super admin may not mutate", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		audit, _ := quietAudit()
		svc := NewTenantService(tenantRepo, audit)

		super := domain.Identity{ID: uuid.New(), Role: domain.RoleSuperAdmin}
		_, err := svc.Update(ctx, super, tenantID, domain.TenantUpdate{Name: &name}, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrReadOnlyRole)
	})

	t.Run("empty patch", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		audit, _ := quietAudit()
		svc := NewTenantService(tenantRepo, audit)

		_, err := svc.Update(ctx, admin, tenantID, domain.TenantUpdate{}, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestTenantService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("super admin only", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		audit, _ := quietAudit()
		svc := NewTenantService(tenantRepo, audit)

		tenantID := uuid.New()
		admin := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleTenantAdmin}
		_, _, err := svc.List(ctx, admin, domain.TenantFilter{})
		assert.ErrorIs(t, err, domain.ErrInsufficientRole)
	})

	t.Run("limit clamped", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		audit, _ := quietAudit()
		svc := NewTenantService(tenantRepo, audit)

		tenantRepo.On("List", ctx, domain.TenantFilter{Page: 1, Limit: 100}).Return([]domain.TenantSummary{}, 0, nil)

		super := domain.Identity{ID: uuid.New(), Role: domain.RoleSuperAdmin}
		_, _, err := svc.List(ctx, super, domain.TenantFilter{Page: 0, Limit: 5000})
		assert.NoError(t, err)
		tenantRepo.AssertExpectations(t)
	})
}

func TestTenantService_Stats(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	otherID := uuid.New()

	tenantRepo := new(MockTenantRepository)
	audit, _ := quietAudit()
	svc := NewTenantService(tenantRepo, audit)

	stats := &domain.TenantStats{TotalUsers: 3, TotalProjects: 2, TotalTasks: 14}
	tenantRepo.On("Stats", ctx, tenantID).Return(stats, nil)

	t.Run("member", func(t *testing.T) {
		id := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleUser}
		got, err := svc.Stats(ctx, id, tenantID)
		assert.NoError(t, err)
		assert.Equal(t, stats, got)
	})

	t.Run("cross-tenant", func(t *testing.T) {
		id := domain.Identity{ID: uuid.New(), TenantID: &otherID, Role: domain.RoleUser}
		_, err := svc.Stats(ctx, id, tenantID)
		assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
	})
}

func TestTenantService_RegisterRollsNothingForward(t *testing.T) {
	ctx := context.Background()
	tenantRepo := new(MockTenantRepository)
	auditRepo := new(MockAuditRepository)
	svc := NewTenantService(tenantRepo, NewAuditRecorder(auditRepo))

	tenantRepo.On("Register", ctx, mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

	_, _, err := svc.Register(ctx, domain.TenantRegister{
		TenantName:    "Acme",
		Subdomain:     "acme",
		AdminEmail:    "a@b.com",
		AdminPassword: "s3cret-pass",
		AdminFullName: "A",
	}, "10.0.0.1")

	assert.Error(t, err)
	auditRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}
