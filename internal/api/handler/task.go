package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/calleja/taskforge/internal/api/middleware"
	"github.com/calleja/taskforge/internal/api/response"
	"github.com/calleja/taskforge/internal/domain"
	"github.com/calleja/taskforge/internal/service"
)

// TaskHandler handles task endpoints
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create adds a task to a project
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	projectID, ok := uuidParam(r, "projectID")
	if !ok {
		response.BadRequest(w, "invalid project ID")
		return
	}

	var input domain.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	task, err := h.taskService.Create(r.Context(), id, projectID, input, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, task)
}

// List returns a project's tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	projectID, ok := uuidParam(r, "projectID")
	if !ok {
		response.BadRequest(w, "invalid project ID")
		return
	}

	page, limit := pageParams(r)
	filter := domain.TaskFilter{
		Status:   domain.TaskStatus(r.URL.Query().Get("status")),
		Priority: domain.TaskPriority(r.URL.Query().Get("priority")),
		Search:   r.URL.Query().Get("search"),
		Page:     page,
		Limit:    limit,
	}
	if assignee := r.URL.Query().Get("assigned_to"); assignee != "" {
		assigneeID, err := uuid.Parse(assignee)
		if err != nil {
			response.BadRequest(w, "invalid assignee ID")
			return
		}
		filter.AssignedTo = &assigneeID
	}

	tasks, total, err := h.taskService.ListByProject(r.Context(), id, projectID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, response.Page{Items: tasks, Total: total, Page: page, Limit: limit})
}

// Get returns one task
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	taskID, ok := uuidParam(r, "taskID")
	if !ok {
		response.BadRequest(w, "invalid task ID")
		return
	}

	task, err := h.taskService.Get(r.Context(), id, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, task)
}

// Update patches a task
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	taskID, ok := uuidParam(r, "taskID")
	if !ok {
		response.BadRequest(w, "invalid task ID")
		return
	}

	var patch domain.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(patch); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	task, err := h.taskService.Update(r.Context(), id, taskID, patch, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, task)
}

// UpdateStatus moves a task through the workflow
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	taskID, ok := uuidParam(r, "taskID")
	if !ok {
		response.BadRequest(w, "invalid task ID")
		return
	}

	var input struct {
		Status domain.TaskStatus `json:"status" validate:"required,oneof=todo in_progress completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	task, err := h.taskService.UpdateStatus(r.Context(), id, taskID, input.Status, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, task)
}
