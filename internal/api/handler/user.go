package handler

import (
	"encoding/json"
	"net/http"

	"github.com/calleja/taskforge/internal/api/middleware"
	"github.com/calleja/taskforge/internal/api/response"
	"github.com/calleja/taskforge/internal/domain"
	"github.com/calleja/taskforge/internal/service"
)

// UserHandler handles tenant membership endpoints
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create adds a member to a tenant
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	user, err := h.userService.Create(r.Context(), id, tenantID, input, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, user)
}

// List returns a tenant's members
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
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
	filter := domain.UserFilter{
		Search: r.URL.Query().Get("search"),
		Role:   domain.Role(r.URL.Query().Get("role")),
		Page:   page,
		Limit:  limit,
	}

	users, total, err := h.userService.List(r.Context(), id, tenantID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, response.Page{Items: users, Total: total, Page: page, Limit: limit})
}

// Update patches a member
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	userID, ok := uuidParam(r, "userID")
	if !ok {
		response.BadRequest(w, "invalid user ID")
		return
	}

	var patch domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(patch); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	user, err := h.userService.Update(r.Context(), id, userID, patch, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, user)
}

// Delete removes a member
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	userID, ok := uuidParam(r, "userID")
	if !ok {
		response.BadRequest(w, "invalid user ID")
		return
	}

	if err := h.userService.Delete(r.Context(), id, userID, clientIP(r)); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}
