package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/calleja/taskforge/internal/domain"
)

// TaskRepository handles task data access
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, project_id, tenant_id, title, description, status, priority, assigned_to, due_date, created_at, updated_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.TenantID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.AssignedTo,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a task
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO tasks (id, project_id, tenant_id, title, description, status, priority, assigned_to, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		task.ID,
		task.ProjectID,
		task.TenantID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.AssignedTo,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListByProject retrieves a project's tasks, high priority first, then by
// due date with unset dates last
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID, filter domain.TaskFilter) ([]domain.TaskWithAssignee, int, error) {
	where := []string{"t.project_id = $1"}
	values := []any{projectID}
	param := 2

	if filter.Status != "" {
		where = append(where, fmt.Sprintf("t.status = $%d", param))
		values = append(values, filter.Status)
		param++
	}
	if filter.Priority != "" {
		where = append(where, fmt.Sprintf("t.priority = $%d", param))
		values = append(values, filter.Priority)
		param++
	}
	if filter.AssignedTo != nil {
		where = append(where, fmt.Sprintf("t.assigned_to = $%d", param))
		values = append(values, *filter.AssignedTo)
		param++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("LOWER(t.title) LIKE $%d", param))
		values = append(values, "%"+strings.ToLower(filter.Search)+"%")
		param++
	}

	whereSQL := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks t `+whereSQL, values...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT t.id, t.project_id, t.tenant_id, t.title, t.description, t.status, t.priority, t.assigned_to, t.due_date, t.created_at, t.updated_at,
		       COALESCE(u.full_name, '') AS assignee_name,
		       COALESCE(u.email, '') AS assignee_email
		FROM tasks t
		LEFT JOIN users u ON t.assigned_to = u.id
		%s
		ORDER BY CASE t.priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END,
		         t.due_date ASC NULLS LAST,
		         t.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereSQL, param, param+1)

	values = append(values, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Pool.Query(ctx, query, values...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.TaskWithAssignee
	for rows.Next() {
		var t domain.TaskWithAssignee
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.TenantID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.AssignedTo,
			&t.DueDate,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.AssigneeName,
			&t.AssigneeEmail,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, total, nil
}

// Update applies a patch to a task. AssignedTo set to the nil UUID clears
// the assignee; nil leaves it untouched.
func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, patch *domain.TaskUpdate) (*domain.Task, error) {
	var assignee *uuid.UUID
	clearAssignee := false
	if patch.AssignedTo != nil {
		if *patch.AssignedTo == uuid.Nil {
			clearAssignee = true
		} else {
			assignee = patch.AssignedTo
		}
	}

	query := `
		UPDATE tasks
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    status = COALESCE($4, status),
		    priority = COALESCE($5, priority),
		    assigned_to = CASE WHEN $6::boolean THEN NULL ELSE COALESCE($7, assigned_to) END,
		    due_date = COALESCE($8, due_date),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns

	task, err := scanTask(r.db.Pool.QueryRow(ctx, query,
		id,
		patch.Title,
		patch.Description,
		patch.Status,
		patch.Priority,
		clearAssignee,
		assignee,
		patch.DueDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// UpdateStatus changes only the workflow state of a task
func (r *TaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) (*domain.Task, error) {
	query := `
		UPDATE tasks
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns

	task, err := scanTask(r.db.Pool.QueryRow(ctx, query, id, status))
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return task, nil
}
