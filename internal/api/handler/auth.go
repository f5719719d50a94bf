package handler

import (
	"encoding/json"
	"net/http"

	"github.com/calleja/taskforge/internal/api/middleware"
	"github.com/calleja/taskforge/internal/api/response"
	"github.com/calleja/taskforge/internal/domain"
	"github.com/calleja/taskforge/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService   *service.AuthService
	tenantService *service.TenantService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, tenantService *service.TenantService) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		tenantService: tenantService,
	}
}

// Register onboards a new tenant with its first admin
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.TenantRegister
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	tenant, admin, err := h.tenantService.Register(r.Context(), input, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, map[string]any{
		"tenant": tenant,
		"admin":  admin,
	})
}

// Login authenticates a user and returns a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	result, err := h.authService.Login(r.Context(), input, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, result)
}

// Logout records the logout. The token itself stays valid until expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	h.authService.Logout(r.Context(), id, clientIP(r))
	response.OK(w, map[string]string{"message": "logged out"})
}
