package domain

import (
	"context"

	"github.com/google/uuid"
)

// ResourceClass names a quota-limited resource kind.
type ResourceClass string

const (
	ResourceUsers    ResourceClass = "users"
	ResourceProjects ResourceClass = "projects"
)

// TenantRepository handles tenant persistence. Get methods return (nil, nil)
// when no row matches.
type TenantRepository interface {
	// Register atomically creates a tenant and its first admin. A concurrent
	// duplicate subdomain surfaces as ErrSubdomainTaken; on any failure
	// neither row exists.
	Register(ctx context.Context, tenant *Tenant, admin *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	List(ctx context.Context, filter TenantFilter) ([]TenantSummary, int, error)
	Update(ctx context.Context, id uuid.UUID, patch *TenantUpdate) (*Tenant, error)
	Stats(ctx context.Context, id uuid.UUID) (*TenantStats, error)
	// CountResources returns the current number of rows of the given class
	// owned by the tenant.
	CountResources(ctx context.Context, tenantID uuid.UUID, class ResourceClass) (int, error)
}

// UserRepository handles user persistence.
type UserRepository interface {
	// Create inserts a tenant member inside a transaction that locks the
	// tenant row and re-checks the user quota, so the ceiling holds under
	// concurrent inserts. Returns ErrQuotaExceeded or ErrEmailTaken.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetByEmail looks up by (tenant, lowercased email); a nil tenantID
	// searches the platform identity space.
	GetByEmail(ctx context.Context, tenantID *uuid.UUID, email string) (*User, error)
	List(ctx context.Context, tenantID uuid.UUID, filter UserFilter) ([]User, int, error)
	Update(ctx context.Context, id uuid.UUID, patch *UserUpdate) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepository handles project persistence.
type ProjectRepository interface {
	// Create inserts a project under the tenant's project quota, enforced
	// transactionally the same way UserRepository.Create is.
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ProjectFilter) ([]ProjectSummary, int, error)
	Update(ctx context.Context, id uuid.UUID, patch *ProjectUpdate) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskRepository handles task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, filter TaskFilter) ([]TaskWithAssignee, int, error)
	Update(ctx context.Context, id uuid.UUID, patch *TaskUpdate) (*Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status TaskStatus) (*Task, error)
}

// AuditRepository is the audit sink. Entries are append-only; there is no
// update or delete.
type AuditRepository interface {
	Insert(ctx context.Context, entry *AuditEntry) error
}
