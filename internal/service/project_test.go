package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/calleja/taskforge/internal/domain"
)

func TestQuotaGuard_CanCreate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	tenant := &domain.Tenant{ID: tenantID, MaxUsers: 5, MaxProjects: 3}

	t.Run("below ceiling", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		tenantRepo.On("GetByID", ctx, tenantID).Return(tenant, nil)
		tenantRepo.On("CountResources", ctx, tenantID, domain.ResourceProjects).Return(2, nil)

		ok, err := NewQuotaGuard(tenantRepo).CanCreate(ctx, tenantID, domain.ResourceProjects)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("at ceiling", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		tenantRepo.On("GetByID", ctx, tenantID).Return(tenant, nil)
		tenantRepo.On("CountResources", ctx, tenantID, domain.ResourceProjects).Return(3, nil)

		ok, err := NewQuotaGuard(tenantRepo).CanCreate(ctx, tenantID, domain.ResourceProjects)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing tenant", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		tenantRepo.On("GetByID", ctx, tenantID).Return(nil, nil)

		_, err := NewQuotaGuard(tenantRepo).CanCreate(ctx, tenantID, domain.ResourceUsers)
		assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	})
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	member := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleUser}
	input := domain.ProjectCreate{Name: "Apollo"}

	t.Run("member creates project", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		audit, _ := quietAudit()
		svc := NewProjectService(projectRepo, audit)

		projectRepo.On("Create", ctx, mock.AnythingOfType("*domain.Project")).Return(nil)

		project, err := svc.Create(ctx, member, tenantID, input, "10.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, "Apollo", project.Name)
		assert.Equal(t, "active", project.Status)
		assert.Equal(t, member.ID, project.CreatedBy)
		assert.Equal(t, tenantID, project.TenantID)
	})

	t.Run("quota exceeded surfaces", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		audit, _ := quietAudit()
		svc := NewProjectService(projectRepo, audit)

		projectRepo.On("Create", ctx, mock.Anything).Return(domain.ErrQuotaExceeded)

		_, err := svc.Create(ctx, member, tenantID, input, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	})

	t.Run("super admin may not create", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		audit, _ := quietAudit()
		svc := NewProjectService(projectRepo, audit)

		super := domain.Identity{ID: uuid.New(), Role: domain.RoleSuperAdmin}
		_, err := svc.Create(ctx, super, tenantID, input, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrReadOnlyRole)
	})
}

func TestProjectService_Get(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	projectID := uuid.New()
	project := &domain.Project{ID: projectID, TenantID: tenantID, CreatedBy: uuid.New()}

	projectRepo := new(MockProjectRepository)
	audit, _ := quietAudit()
	svc := NewProjectService(projectRepo, audit)
	projectRepo.On("GetByID", ctx, projectID).Return(project, nil)

	t.Run("member", func(t *testing.T) {
		member := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleUser}
		got, err := svc.Get(ctx, member, projectID)
		assert.NoError(t, err)
		assert.Equal(t, project, got)
	})

	t.Run("cross-tenant", func(t *testing.T) {
		otherTenant := uuid.New()
		intruder := domain.Identity{ID: uuid.New(), TenantID: &otherTenant, Role: domain.RoleTenantAdmin}
		_, err := svc.Get(ctx, intruder, projectID)
		assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
	})
}

func TestProjectService_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	ownerID := uuid.New()
	projectID := uuid.New()
	project := &domain.Project{ID: projectID, TenantID: tenantID, CreatedBy: ownerID}
	name := "Renamed"

	t.Run("owner updates", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		audit, _ := quietAudit()
		svc := NewProjectService(projectRepo, audit)

		updated := &domain.Project{ID: projectID, TenantID: tenantID, CreatedBy: ownerID, Name: name}
		projectRepo.On("GetByID", ctx, projectID).Return(project, nil)
		projectRepo.On("Update", ctx, projectID, mock.Anything).Return(updated, nil)

		owner := domain.Identity{ID: ownerID, TenantID: &tenantID, Role: domain.RoleUser}
		got, err := svc.Update(ctx, owner, projectID, domain.ProjectUpdate{Name: &name}, "10.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, name, got.Name)
	})

	t.Run("non-owner member denied", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		audit, _ := quietAudit()
		svc := NewProjectService(projectRepo, audit)

		projectRepo.On("GetByID", ctx, projectID).Return(project, nil)

		other := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleUser}
		_, err := svc.Update(ctx, other, projectID, domain.ProjectUpdate{Name: &name}, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("admin deletes someone else's project", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		audit, _ := quietAudit()
		svc := NewProjectService(projectRepo, audit)

		projectRepo.On("GetByID", ctx, projectID).Return(project, nil)
		projectRepo.On("Delete", ctx, projectID).Return(nil)

		admin := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleTenantAdmin}
		err := svc.Delete(ctx, admin, projectID, "10.0.0.1")
		assert.NoError(t, err)
	})

	t.Run("missing project", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		audit, _ := quietAudit()
		svc := NewProjectService(projectRepo, audit)

		ghost := uuid.New()
		projectRepo.On("GetByID", ctx, ghost).Return(nil, nil)

		admin := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleTenantAdmin}
		err := svc.Delete(ctx, admin, ghost, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// A tenant at its project ceiling cannot create, and a peek at another
// tenant's project denies with the isolation reason the handlers translate
// to a plain not-found.
func TestProjectService_QuotaThenIsolationScenario(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	member := domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleUser}

	projectRepo := new(MockProjectRepository)
	audit, _ := quietAudit()
	svc := NewProjectService(projectRepo, audit)

	projectRepo.On("Create", ctx, mock.Anything).Return(domain.ErrQuotaExceeded)

	_, err := svc.Create(ctx, member, tenantID, domain.ProjectCreate{Name: "One Too Many"}, "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	foreignID := uuid.New()
	foreign := &domain.Project{ID: foreignID, TenantID: uuid.New(), CreatedBy: uuid.New()}
	projectRepo.On("GetByID", ctx, foreignID).Return(foreign, nil)

	_, err = svc.Get(ctx, member, foreignID)
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
}
