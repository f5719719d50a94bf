// Package authz holds the access decision engine: a pure function deciding
// whether an identity may perform an operation on a resource. It does no I/O
// and knows nothing about HTTP or the datastore.
package authz

import (
	"github.com/google/uuid"

	"github.com/calleja/taskforge/internal/domain"
)

// Operation identifies a guarded action.
type Operation string

const (
	OpTenantRead   Operation = "tenant:read"
	OpTenantList   Operation = "tenant:list"
	OpTenantUpdate Operation = "tenant:update"

	OpUserCreate Operation = "user:create"
	OpUserList   Operation = "user:list"
	OpUserUpdate Operation = "user:update"
	OpUserDelete Operation = "user:delete"

	OpProjectCreate Operation = "project:create"
	OpProjectRead   Operation = "project:read"
	OpProjectList   Operation = "project:list"
	OpProjectUpdate Operation = "project:update"
	OpProjectDelete Operation = "project:delete"

	OpTaskCreate       Operation = "task:create"
	OpTaskRead         Operation = "task:read"
	OpTaskList         Operation = "task:list"
	OpTaskUpdate       Operation = "task:update"
	OpTaskUpdateStatus Operation = "task:update_status"
)

type opSpec struct {
	mutating      bool
	roles         []domain.Role // non-empty: only these roles pass
	ownerOrAdmin  bool          // tenant admin or the resource owner
	selfProtected bool          // never allowed against the identity itself
}

var ops = map[Operation]opSpec{
	OpTenantRead:   {},
	OpTenantList:   {roles: []domain.Role{domain.RoleSuperAdmin}},
	OpTenantUpdate: {mutating: true, roles: []domain.Role{domain.RoleTenantAdmin}},

	OpUserCreate: {mutating: true, roles: []domain.Role{domain.RoleTenantAdmin}},
	OpUserList:   {},
	OpUserUpdate: {mutating: true, ownerOrAdmin: true},
	OpUserDelete: {mutating: true, roles: []domain.Role{domain.RoleTenantAdmin}, selfProtected: true},

	OpProjectCreate: {mutating: true},
	OpProjectRead:   {},
	OpProjectList:   {},
	OpProjectUpdate: {mutating: true, ownerOrAdmin: true},
	OpProjectDelete: {mutating: true, ownerOrAdmin: true},

	OpTaskCreate:       {mutating: true},
	OpTaskRead:         {},
	OpTaskList:         {},
	OpTaskUpdate:       {mutating: true},
	OpTaskUpdateStatus: {mutating: true},
}

// Mutating reports whether the operation changes state.
func (op Operation) Mutating() bool {
	return ops[op].mutating
}

// Resource describes the target of an operation. TenantID is nil for
// resources outside any tenant (the tenant list, a platform identity).
// OwnerID is the owning user: a project's creator, or for user resources the
// target user itself.
type Resource struct {
	TenantID *uuid.UUID
	OwnerID  *uuid.UUID
}

// Decision is an allow/deny outcome with a typed reason on deny.
type Decision struct {
	Allowed bool
	Reason  error
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(reason error) Decision { return Decision{Reason: reason} }

// Err returns the deny reason, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Reason
}

// Decide evaluates the ordered rule set; the first matching rule governs.
//
//  1. Super admins are read-only: every mutating operation is denied,
//     whatever the target.
//  2. Tenant isolation: non-super-admins may not touch another tenant's
//     resources. Callers surface this as a not-found.
//  3. Role-gated operations deny identities outside the permitted set.
//  4. Owner-or-admin operations allow tenant admins and the resource owner.
//  5. Self-protection: some operations never apply to the identity itself.
//  6. Everything else is allowed.
func Decide(id domain.Identity, op Operation, res Resource) Decision {
	spec, known := ops[op]
	if !known {
		return deny(domain.ErrInsufficientRole)
	}

	if id.Role == domain.RoleSuperAdmin && spec.mutating {
		return deny(domain.ErrReadOnlyRole)
	}

	if id.Role != domain.RoleSuperAdmin && res.TenantID != nil && !id.SameTenant(*res.TenantID) {
		return deny(domain.ErrCrossTenantAccess)
	}

	if len(spec.roles) > 0 && !roleIn(id.Role, spec.roles) {
		return deny(domain.ErrInsufficientRole)
	}

	if spec.ownerOrAdmin && id.Role != domain.RoleTenantAdmin &&
		(res.OwnerID == nil || *res.OwnerID != id.ID) {
		return deny(domain.ErrNotOwner)
	}

	if spec.selfProtected && res.OwnerID != nil && *res.OwnerID == id.ID {
		return deny(domain.ErrSelfAction)
	}

	return allow()
}

func roleIn(role domain.Role, set []domain.Role) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}
