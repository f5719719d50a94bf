package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calleja/taskforge/internal/authz"
	"github.com/calleja/taskforge/internal/domain"
)

// TaskService handles task operations
type TaskService struct {
	taskRepo    domain.TaskRepository
	projectRepo domain.ProjectRepository
	userRepo    domain.UserRepository
	audit       *AuditRecorder
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo domain.TaskRepository,
	projectRepo domain.ProjectRepository,
	userRepo domain.UserRepository,
	audit *AuditRecorder,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		audit:       audit,
	}
}

// Create adds a task to a project. The task inherits the project's tenant.
func (s *TaskService) Create(ctx context.Context, id domain.Identity, projectID uuid.UUID, input domain.TaskCreate, ip string) (*domain.Task, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}

	if err := authz.Decide(id, authz.OpTaskCreate, authz.Resource{TenantID: &project.TenantID}).Err(); err != nil {
		return nil, err
	}

	if input.AssignedTo != nil {
		if err := s.checkAssignee(ctx, project.TenantID, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		TenantID:    project.TenantID,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskTodo,
		Priority:    priority,
		AssignedTo:  input.AssignedTo,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.audit.Record(ctx, &project.TenantID, id.ID, domain.ActionCreateTask, "task", task.ID, ip)

	return task, nil
}

// Get retrieves a task the caller is allowed to see
func (s *TaskService) Get(ctx context.Context, id domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}

	if err := authz.Decide(id, authz.OpTaskRead, authz.Resource{TenantID: &task.TenantID}).Err(); err != nil {
		return nil, err
	}
	return task, nil
}

// ListByProject retrieves a project's tasks
func (s *TaskService) ListByProject(ctx context.Context, id domain.Identity, projectID uuid.UUID, filter domain.TaskFilter) ([]domain.TaskWithAssignee, int, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, 0, domain.ErrNotFound
	}

	if err := authz.Decide(id, authz.OpTaskList, authz.Resource{TenantID: &project.TenantID}).Err(); err != nil {
		return nil, 0, err
	}

	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	tasks, total, err := s.taskRepo.ListByProject(ctx, projectID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Update applies a patch to a task
func (s *TaskService) Update(ctx context.Context, id domain.Identity, taskID uuid.UUID, patch domain.TaskUpdate, ip string) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}

	if err := authz.Decide(id, authz.OpTaskUpdate, authz.Resource{TenantID: &task.TenantID}).Err(); err != nil {
		return nil, err
	}
	if patch.IsZero() {
		return nil, domain.ErrValidation
	}

	if patch.AssignedTo != nil && *patch.AssignedTo != uuid.Nil {
		if err := s.checkAssignee(ctx, task.TenantID, *patch.AssignedTo); err != nil {
			return nil, err
		}
	}

	updated, err := s.taskRepo.Update(ctx, taskID, &patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}

	s.audit.Record(ctx, &task.TenantID, id.ID, domain.ActionUpdateTask, "task", taskID, ip)

	return updated, nil
}

// UpdateStatus moves a task through the workflow
func (s *TaskService) UpdateStatus(ctx context.Context, id domain.Identity, taskID uuid.UUID, status domain.TaskStatus, ip string) (*domain.Task, error) {
	switch status {
	case domain.TaskTodo, domain.TaskInProgress, domain.TaskCompleted:
	default:
		return nil, domain.ErrValidation
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}

	if err := authz.Decide(id, authz.OpTaskUpdateStatus, authz.Resource{TenantID: &task.TenantID}).Err(); err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.UpdateStatus(ctx, taskID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}

	s.audit.Record(ctx, &task.TenantID, id.ID, domain.ActionUpdateTaskStatus, "task", taskID, ip)

	return updated, nil
}

// checkAssignee requires the assignee to be an active member of the tenant
func (s *TaskService) checkAssignee(ctx context.Context, tenantID, assigneeID uuid.UUID) error {
	assignee, err := s.userRepo.GetByID(ctx, assigneeID)
	if err != nil {
		return fmt.Errorf("failed to get assignee: %w", err)
	}
	if assignee == nil || assignee.TenantID == nil || *assignee.TenantID != tenantID || !assignee.IsActive {
		return domain.ErrValidation
	}
	return nil
}
