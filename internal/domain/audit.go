package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit action tags. One entry is appended per state-changing action.
const (
	ActionRegisterTenant   = "REGISTER_TENANT"
	ActionLogin            = "LOGIN"
	ActionLogout           = "LOGOUT"
	ActionUpdateTenant     = "UPDATE_TENANT"
	ActionCreateUser       = "CREATE_USER"
	ActionUpdateUser       = "UPDATE_USER"
	ActionDeleteUser       = "DELETE_USER"
	ActionCreateProject    = "CREATE_PROJECT"
	ActionUpdateProject    = "UPDATE_PROJECT"
	ActionDeleteProject    = "DELETE_PROJECT"
	ActionCreateTask       = "CREATE_TASK"
	ActionUpdateTask       = "UPDATE_TASK"
	ActionUpdateTaskStatus = "UPDATE_TASK_STATUS"
)

// AuditEntry is an append-only record of a state-changing action. TenantID
// is nil for platform-level actions (a super admin logging in, for example).
type AuditEntry struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   *uuid.UUID `json:"tenant_id"`
	ActorID    uuid.UUID  `json:"actor_id"`
	Action     string     `json:"action"`
	EntityType string     `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	IPAddress  string     `json:"ip_address,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
