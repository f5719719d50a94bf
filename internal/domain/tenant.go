package domain

import (
	"time"

	"github.com/google/uuid"
)

// TenantStatus is the lifecycle state of a tenant.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
)

// Defaults applied by the onboarding transaction.
const (
	PlanFree           = "free"
	DefaultMaxUsers    = 5
	DefaultMaxProjects = 3
)

// Tenant represents an isolated organization namespace.
type Tenant struct {
	ID               uuid.UUID    `json:"id"`
	Name             string       `json:"name"`
	Subdomain        string       `json:"subdomain"`
	Status           TenantStatus `json:"status"`
	SubscriptionPlan string       `json:"subscription_plan"`
	MaxUsers         int          `json:"max_users"`
	MaxProjects      int          `json:"max_projects"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TenantRegister is the onboarding input: a tenant plus its first admin.
type TenantRegister struct {
	TenantName    string `json:"tenant_name" validate:"required,max=255"`
	Subdomain     string `json:"subdomain" validate:"required,hostname_rfc1123,max=63"`
	AdminEmail    string `json:"admin_email" validate:"required,email,max=255"`
	AdminPassword string `json:"admin_password" validate:"required,min=8,max=72"`
	AdminFullName string `json:"admin_full_name" validate:"required,max=255"`
}

// TenantUpdate is a patch: only non-nil fields change. Name is the only
// field a tenant admin may touch; the rest are super-admin territory and the
// read-only clamp makes them effectively immutable through this API.
type TenantUpdate struct {
	Name             *string       `json:"name,omitempty" validate:"omitempty,max=255"`
	Status           *TenantStatus `json:"status,omitempty" validate:"omitempty,oneof=active suspended"`
	SubscriptionPlan *string       `json:"subscription_plan,omitempty" validate:"omitempty,max=64"`
	MaxUsers         *int          `json:"max_users,omitempty" validate:"omitempty,min=1"`
	MaxProjects      *int          `json:"max_projects,omitempty" validate:"omitempty,min=1"`
}

// IsZero reports whether the patch carries no fields.
func (t TenantUpdate) IsZero() bool {
	return t.Name == nil && t.Status == nil && t.SubscriptionPlan == nil &&
		t.MaxUsers == nil && t.MaxProjects == nil
}

// TouchesRestrictedFields reports whether the patch touches anything beyond
// the name.
func (t TenantUpdate) TouchesRestrictedFields() bool {
	return t.Status != nil || t.SubscriptionPlan != nil ||
		t.MaxUsers != nil || t.MaxProjects != nil
}

// TenantStats are the resource counts shown on the tenant detail view.
type TenantStats struct {
	TotalUsers    int `json:"total_users"`
	TotalProjects int `json:"total_projects"`
	TotalTasks    int `json:"total_tasks"`
}

// TenantFilter narrows tenant listings (super admin only).
type TenantFilter struct {
	Status           TenantStatus
	SubscriptionPlan string
	Page             int
	Limit            int
}

// TenantSummary is a tenant row with its headline counts.
type TenantSummary struct {
	Tenant
	TotalUsers    int `json:"total_users"`
	TotalProjects int `json:"total_projects"`
}
