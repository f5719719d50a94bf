package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calleja/taskforge/internal/authz"
	"github.com/calleja/taskforge/internal/domain"
)

// ProjectService handles project operations
type ProjectService struct {
	projectRepo domain.ProjectRepository
	audit       *AuditRecorder
}

// NewProjectService creates a new project service
func NewProjectService(projectRepo domain.ProjectRepository, audit *AuditRecorder) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		audit:       audit,
	}
}

// Create adds a project to a tenant, subject to the project quota
func (s *ProjectService) Create(ctx context.Context, id domain.Identity, tenantID uuid.UUID, input domain.ProjectCreate, ip string) (*domain.Project, error) {
	if err := authz.Decide(id, authz.OpProjectCreate, authz.Resource{TenantID: &tenantID}).Err(); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = "active"
	}

	now := time.Now()
	project := &domain.Project{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		CreatedBy:   id.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &tenantID, id.ID, domain.ActionCreateProject, "project", project.ID, ip)

	return project, nil
}

// Get retrieves a project the caller is allowed to see
func (s *ProjectService) Get(ctx context.Context, id domain.Identity, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}

	res := authz.Resource{TenantID: &project.TenantID, OwnerID: &project.CreatedBy}
	if err := authz.Decide(id, authz.OpProjectRead, res).Err(); err != nil {
		return nil, err
	}
	return project, nil
}

// List retrieves a tenant's projects
func (s *ProjectService) List(ctx context.Context, id domain.Identity, tenantID uuid.UUID, filter domain.ProjectFilter) ([]domain.ProjectSummary, int, error) {
	if err := authz.Decide(id, authz.OpProjectList, authz.Resource{TenantID: &tenantID}).Err(); err != nil {
		return nil, 0, err
	}

	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	projects, total, err := s.projectRepo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// Update applies a patch to a project, creator or tenant admin only
func (s *ProjectService) Update(ctx context.Context, id domain.Identity, projectID uuid.UUID, patch domain.ProjectUpdate, ip string) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}

	res := authz.Resource{TenantID: &project.TenantID, OwnerID: &project.CreatedBy}
	if err := authz.Decide(id, authz.OpProjectUpdate, res).Err(); err != nil {
		return nil, err
	}
	if patch.IsZero() {
		return nil, domain.ErrValidation
	}

	updated, err := s.projectRepo.Update(ctx, projectID, &patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}

	s.audit.Record(ctx, &project.TenantID, id.ID, domain.ActionUpdateProject, "project", projectID, ip)

	return updated, nil
}

// Delete removes a project and its tasks, creator or tenant admin only
func (s *ProjectService) Delete(ctx context.Context, id domain.Identity, projectID uuid.UUID, ip string) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return domain.ErrNotFound
	}

	res := authz.Resource{TenantID: &project.TenantID, OwnerID: &project.CreatedBy}
	if err := authz.Decide(id, authz.OpProjectDelete, res).Err(); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.audit.Record(ctx, &project.TenantID, id.ID, domain.ActionDeleteProject, "project", projectID, ip)

	return nil
}
