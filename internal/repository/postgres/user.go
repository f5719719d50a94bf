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

// UserRepository handles user data access
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, tenant_id, email, password_hash, full_name, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.TenantID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a tenant member. The tenant row is locked for the duration
// of the transaction and the user count re-checked under the lock, so
// concurrent inserts cannot exceed max_users.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.TenantID == nil {
		return fmt.Errorf("create user: tenant is required")
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var maxUsers int
	err = tx.QueryRow(ctx,
		`SELECT max_users FROM tenants WHERE id = $1 FOR UPDATE`,
		*user.TenantID,
	).Scan(&maxUsers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTenantNotFound
		}
		return fmt.Errorf("failed to lock tenant: %w", err)
	}

	var current int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE tenant_id = $1`,
		*user.TenantID,
	).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if current >= maxUsers {
		return domain.ErrQuotaExceeded
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, tenant_id, email, password_hash, full_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		user.ID,
		user.TenantID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user creation: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail looks up by (tenant, lowercased email). A nil tenantID searches
// the platform identity space.
func (r *UserRepository) GetByEmail(ctx context.Context, tenantID *uuid.UUID, email string) (*domain.User, error) {
	email = strings.ToLower(email)

	var row pgx.Row
	if tenantID == nil {
		query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id IS NULL AND email = $1`
		row = r.db.Pool.QueryRow(ctx, query, email)
	} else {
		query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND email = $2`
		row = r.db.Pool.QueryRow(ctx, query, *tenantID, email)
	}

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// List retrieves a tenant's users, filtered and paginated
func (r *UserRepository) List(ctx context.Context, tenantID uuid.UUID, filter domain.UserFilter) ([]domain.User, int, error) {
	where := []string{"tenant_id = $1"}
	values := []any{tenantID}
	param := 2

	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", param, param))
		values = append(values, "%"+strings.ToLower(filter.Search)+"%")
		param++
	}
	if filter.Role != "" {
		where = append(where, fmt.Sprintf("role = $%d", param))
		values = append(values, filter.Role)
		param++
	}

	whereSQL := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users `+whereSQL, values...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+userColumns+`
		FROM users
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereSQL, param, param+1)

	values = append(values, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Pool.Query(ctx, query, values...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID,
			&u.TenantID,
			&u.Email,
			&u.PasswordHash,
			&u.FullName,
			&u.Role,
			&u.IsActive,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, total, nil
}

// Update applies a patch to a user; only provided fields change
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, patch *domain.UserUpdate) (*domain.User, error) {
	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    role = COALESCE($3, role),
		    is_active = COALESCE($4, is_active),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query,
		id,
		patch.FullName,
		patch.Role,
		patch.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
