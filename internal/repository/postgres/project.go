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

// ProjectRepository handles project data access
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, tenant_id, name, description, status, created_by, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a project. The tenant row is locked and the project count
// re-checked under the lock, so concurrent inserts cannot exceed
// max_projects.
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var maxProjects int
	err = tx.QueryRow(ctx,
		`SELECT max_projects FROM tenants WHERE id = $1 FOR UPDATE`,
		project.TenantID,
	).Scan(&maxProjects)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTenantNotFound
		}
		return fmt.Errorf("failed to lock tenant: %w", err)
	}

	var current int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE tenant_id = $1`,
		project.TenantID,
	).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to count projects: %w", err)
	}
	if current >= maxProjects {
		return domain.ErrQuotaExceeded
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO projects (id, tenant_id, name, description, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		project.ID,
		project.TenantID,
		project.Name,
		project.Description,
		project.Status,
		project.CreatedBy,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit project creation: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// List retrieves a tenant's projects with creator and task counts
func (r *ProjectRepository) List(ctx context.Context, tenantID uuid.UUID, filter domain.ProjectFilter) ([]domain.ProjectSummary, int, error) {
	where := []string{"p.tenant_id = $1"}
	values := []any{tenantID}
	param := 2

	if filter.Status != "" {
		where = append(where, fmt.Sprintf("p.status = $%d", param))
		values = append(values, filter.Status)
		param++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("LOWER(p.name) LIKE $%d", param))
		values = append(values, "%"+strings.ToLower(filter.Search)+"%")
		param++
	}

	whereSQL := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects p `+whereSQL, values...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.tenant_id, p.name, p.description, p.status, p.created_by, p.created_at, p.updated_at,
		       COALESCE(u.full_name, '') AS creator_name,
		       (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count,
		       (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.status = 'completed') AS completed_task_count
		FROM projects p
		LEFT JOIN users u ON p.created_by = u.id
		%s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereSQL, param, param+1)

	values = append(values, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Pool.Query(ctx, query, values...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.ProjectSummary
	for rows.Next() {
		var s domain.ProjectSummary
		if err := rows.Scan(
			&s.ID,
			&s.TenantID,
			&s.Name,
			&s.Description,
			&s.Status,
			&s.CreatedBy,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.CreatorName,
			&s.TaskCount,
			&s.CompletedTaskCount,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, s)
	}

	return projects, total, nil
}

// Update applies a patch to a project; only provided fields change
func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, patch *domain.ProjectUpdate) (*domain.Project, error) {
	query := `
		UPDATE projects
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    status = COALESCE($4, status),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns

	project, err := scanProject(r.db.Pool.QueryRow(ctx, query,
		id,
		patch.Name,
		patch.Description,
		patch.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// Delete removes a project and, via schema cascade, its tasks
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
