package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project belongs to exactly one tenant; CreatedBy references a user of that
// same tenant.
type Project struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectCreate represents project creation data.
type ProjectCreate struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Status      string `json:"status" validate:"omitempty,max=64"`
}

// ProjectUpdate is a patch: only non-nil fields change.
type ProjectUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *string `json:"status,omitempty" validate:"omitempty,max=64"`
}

// IsZero reports whether the patch carries no fields.
func (p ProjectUpdate) IsZero() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// ProjectSummary is a project row joined with its creator and task counts.
type ProjectSummary struct {
	Project
	CreatorName        string `json:"creator_name"`
	TaskCount          int    `json:"task_count"`
	CompletedTaskCount int    `json:"completed_task_count"`
}
