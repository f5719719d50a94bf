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

// TenantRepository handles tenant data access
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

const tenantColumns = `id, name, subdomain, status, subscription_plan, max_users, max_projects, created_at, updated_at`

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Subdomain,
		&t.Status,
		&t.SubscriptionPlan,
		&t.MaxUsers,
		&t.MaxProjects,
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

// Register atomically creates a tenant and its first admin user. The two
// inserts share one transaction so a failure of either leaves no partial
// state. A concurrent duplicate subdomain loses on the unique index.
func (r *TenantRepository) Register(ctx context.Context, tenant *domain.Tenant, admin *domain.User) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO tenants (id, name, subdomain, status, subscription_plan, max_users, max_projects, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		tenant.ID,
		tenant.Name,
		tenant.Subdomain,
		tenant.Status,
		tenant.SubscriptionPlan,
		tenant.MaxUsers,
		tenant.MaxProjects,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "tenants_subdomain_key") {
			return domain.ErrSubdomainTaken
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, tenant_id, email, password_hash, full_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		admin.ID,
		admin.TenantID,
		admin.Email,
		admin.PasswordHash,
		admin.FullName,
		admin.Role,
		admin.IsActive,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}

	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`

	tenant, err := scanTenant(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

// GetBySubdomain retrieves a tenant by its lowercased subdomain
func (r *TenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE subdomain = $1`

	tenant, err := scanTenant(r.db.Pool.QueryRow(ctx, query, strings.ToLower(subdomain)))
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

// List retrieves tenants with their headline counts, filtered and paginated
func (r *TenantRepository) List(ctx context.Context, filter domain.TenantFilter) ([]domain.TenantSummary, int, error) {
	var where []string
	var values []any
	param := 1

	if filter.Status != "" {
		where = append(where, fmt.Sprintf("t.status = $%d", param))
		values = append(values, filter.Status)
		param++
	}
	if filter.SubscriptionPlan != "" {
		where = append(where, fmt.Sprintf("t.subscription_plan = $%d", param))
		values = append(values, filter.SubscriptionPlan)
		param++
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM tenants t ` + whereSQL
	if err := r.db.Pool.QueryRow(ctx, countQuery, values...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT t.id, t.name, t.subdomain, t.status, t.subscription_plan, t.max_users, t.max_projects, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM users u WHERE u.tenant_id = t.id) AS total_users,
		       (SELECT COUNT(*) FROM projects p WHERE p.tenant_id = t.id) AS total_projects
		FROM tenants t
		%s
		ORDER BY t.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereSQL, param, param+1)

	values = append(values, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Pool.Query(ctx, query, values...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []domain.TenantSummary
	for rows.Next() {
		var s domain.TenantSummary
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Subdomain,
			&s.Status,
			&s.SubscriptionPlan,
			&s.MaxUsers,
			&s.MaxProjects,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.TotalUsers,
			&s.TotalProjects,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, s)
	}

	return tenants, total, nil
}

// Update applies a patch to a tenant; only provided fields change
func (r *TenantRepository) Update(ctx context.Context, id uuid.UUID, patch *domain.TenantUpdate) (*domain.Tenant, error) {
	query := `
		UPDATE tenants
		SET name = COALESCE($2, name),
		    status = COALESCE($3, status),
		    subscription_plan = COALESCE($4, subscription_plan),
		    max_users = COALESCE($5, max_users),
		    max_projects = COALESCE($6, max_projects),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + tenantColumns

	tenant, err := scanTenant(r.db.Pool.QueryRow(ctx, query,
		id,
		patch.Name,
		patch.Status,
		patch.SubscriptionPlan,
		patch.MaxUsers,
		patch.MaxProjects,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return tenant, nil
}

// Stats returns the tenant's resource counts
func (r *TenantRepository) Stats(ctx context.Context, id uuid.UUID) (*domain.TenantStats, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM users WHERE tenant_id = $1),
		       (SELECT COUNT(*) FROM projects WHERE tenant_id = $1),
		       (SELECT COUNT(*) FROM tasks WHERE tenant_id = $1)
	`

	var stats domain.TenantStats
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&stats.TotalUsers,
		&stats.TotalProjects,
		&stats.TotalTasks,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant stats: %w", err)
	}

	return &stats, nil
}

// CountResources returns the current number of rows of a quota-limited class
func (r *TenantRepository) CountResources(ctx context.Context, tenantID uuid.UUID, class domain.ResourceClass) (int, error) {
	var query string
	switch class {
	case domain.ResourceUsers:
		query = `SELECT COUNT(*) FROM users WHERE tenant_id = $1`
	case domain.ResourceProjects:
		query = `SELECT COUNT(*) FROM projects WHERE tenant_id = $1`
	default:
		return 0, fmt.Errorf("unknown resource class: %s", class)
	}

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", class, err)
	}
	return count, nil
}
