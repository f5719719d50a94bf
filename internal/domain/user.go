package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the canonical role spelling used everywhere past the claim
// boundary.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleUser        Role = "user"
)

// NormalizeRole folds legacy spellings into a canonical Role. Historic data
// carries both "super_admin" and "superadmin" for the platform role.
func NormalizeRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "super_admin", "superadmin":
		return RoleSuperAdmin
	case "tenant_admin":
		return RoleTenantAdmin
	default:
		return RoleUser
	}
}

// User represents an identity. TenantID is nil for platform-level
// super admins.
type User struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     *uuid.UUID `json:"tenant_id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserCreate represents data for adding a member to a tenant.
type UserCreate struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=255"`
	Role     Role   `json:"role" validate:"omitempty,oneof=tenant_admin user"`
}

// UserUpdate is a patch: only non-nil fields change.
type UserUpdate struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=255"`
	Role     *Role   `json:"role,omitempty" validate:"omitempty,oneof=tenant_admin user"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// IsZero reports whether the patch carries no fields.
func (u UserUpdate) IsZero() bool {
	return u.FullName == nil && u.Role == nil && u.IsActive == nil
}

// UserFilter narrows user listings.
type UserFilter struct {
	Search string
	Role   Role
	Page   int
	Limit  int
}

// UserLogin represents login credentials. TenantSubdomain is empty for
// platform-level logins.
type UserLogin struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	TenantSubdomain string `json:"tenant_subdomain" validate:"omitempty,hostname_rfc1123"`
}

// Identity is the authenticated caller as recovered from token claims.
type Identity struct {
	ID       uuid.UUID
	TenantID *uuid.UUID
	Role     Role
}

// SameTenant reports whether the identity belongs to the given tenant.
func (i Identity) SameTenant(tenantID uuid.UUID) bool {
	return i.TenantID != nil && *i.TenantID == tenantID
}

// AuthResult is the outcome of a successful login.
type AuthResult struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
