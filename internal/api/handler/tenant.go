package handler

import (
	"encoding/json"
	"net/http"

	"github.com/calleja/taskforge/internal/api/middleware"
	"github.com/calleja/taskforge/internal/api/response"
	"github.com/calleja/taskforge/internal/domain"
	"github.com/calleja/taskforge/internal/service"
)

// TenantHandler handles tenant endpoints
type TenantHandler struct {
	tenantService *service.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// List returns all tenants, super admin only
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	page, limit := pageParams(r)
	filter := domain.TenantFilter{
		Status:           domain.TenantStatus(r.URL.Query().Get("status")),
		SubscriptionPlan: r.URL.Query().Get("plan"),
		Page:             page,
		Limit:            limit,
	}

	tenants, total, err := h.tenantService.List(r.Context(), id, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, response.Page{Items: tenants, Total: total, Page: page, Limit: limit})
}

// Get returns one tenant
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	tenant, err := h.tenantService.Get(r.Context(), id, tenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, tenant)
}

// Update patches a tenant
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var patch domain.TenantUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(patch); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	tenant, err := h.tenantService.Update(r.Context(), id, tenantID, patch, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, tenant)
}

// Stats returns a tenant's resource counts
func (h *TenantHandler) Stats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.tenantService.Stats(r.Context(), id, tenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, stats)
}
