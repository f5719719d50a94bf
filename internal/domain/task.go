package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// TaskPriority orders tasks in listings (high first).
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task carries a denormalized TenantID copied from its project so isolation
// checks never need a join.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	TenantID    uuid.UUID    `json:"tenant_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssignedTo  *uuid.UUID   `json:"assigned_to"`
	DueDate     *time.Time   `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskCreate represents task creation data.
type TaskCreate struct {
	Title       string       `json:"title" validate:"required,max=255"`
	Description string       `json:"description" validate:"omitempty,max=2000"`
	Priority    TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo  *uuid.UUID   `json:"assigned_to,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
}

// TaskUpdate is a patch: only non-nil fields change. Setting AssignedTo to
// the nil UUID clears the assignee.
type TaskUpdate struct {
	Title       *string       `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress completed"`
	Priority    *TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	AssignedTo  *uuid.UUID    `json:"assigned_to,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

// IsZero reports whether the patch carries no fields.
func (t TaskUpdate) IsZero() bool {
	return t.Title == nil && t.Description == nil && t.Status == nil &&
		t.Priority == nil && t.AssignedTo == nil && t.DueDate == nil
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status     TaskStatus
	AssignedTo *uuid.UUID
	Priority   TaskPriority
	Search     string
	Page       int
	Limit      int
}

// TaskWithAssignee is a task row joined with its assignee, when set.
type TaskWithAssignee struct {
	Task
	AssigneeName  string `json:"assignee_name,omitempty"`
	AssigneeEmail string `json:"assignee_email,omitempty"`
}
