package handler

import (
	"encoding/json"
	"net/http"

	"github.com/calleja/taskforge/internal/api/middleware"
	"github.com/calleja/taskforge/internal/api/response"
	"github.com/calleja/taskforge/internal/domain"
	"github.com/calleja/taskforge/internal/service"
)

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	projectService *service.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create adds a project to a tenant
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	tenantID, ok := uuidParam(r, "tenantID")
	if !ok {
		response.BadRequest(w, "invalid tenant ID")
		return
	}

	var input domain.ProjectCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	project, err := h.projectService.Create(r.Context(), id, tenantID, input, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, project)
}

// List returns a tenant's projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	tenantID, ok := uuidParam(r, "tenantID")
	if !ok {
		response.BadRequest(w, "invalid tenant ID")
		return
	}

	page, limit := pageParams(r)
	filter := domain.ProjectFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	}

	projects, total, err := h.projectService.List(r.Context(), id, tenantID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, response.Page{Items: projects, Total: total, Page: page, Limit: limit})
}

// Get returns one project
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	project, err := h.projectService.Get(r.Context(), id, projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, project)
}

// Update patches a project
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var patch domain.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(patch); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	project, err := h.projectService.Update(r.Context(), id, projectID, patch, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, project)
}

// Delete removes a project
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.projectService.Delete(r.Context(), id, projectID, clientIP(r)); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}
