package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calleja/taskforge/internal/authz"
	"github.com/calleja/taskforge/internal/domain"
	"github.com/calleja/taskforge/internal/security"
)

// UserService handles tenant membership operations
type UserService struct {
	userRepo domain.UserRepository
	audit    *AuditRecorder
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository, audit *AuditRecorder) *UserService {
	return &UserService{
		userRepo: userRepo,
		audit:    audit,
	}
}

// Create adds a member to a tenant, subject to the user quota
func (s *UserService) Create(ctx context.Context, id domain.Identity, tenantID uuid.UUID, input domain.UserCreate, ip string) (*domain.User, error) {
	if err := authz.Decide(id, authz.OpUserCreate, authz.Resource{TenantID: &tenantID}).Err(); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		TenantID:     &tenantID,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &tenantID, id.ID, domain.ActionCreateUser, "user", user.ID, ip)

	return user, nil
}

// List retrieves a tenant's members
func (s *UserService) List(ctx context.Context, id domain.Identity, tenantID uuid.UUID, filter domain.UserFilter) ([]domain.User, int, error) {
	if err := authz.Decide(id, authz.OpUserList, authz.Resource{TenantID: &tenantID}).Err(); err != nil {
		return nil, 0, err
	}

	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	users, total, err := s.userRepo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Update applies a patch to a user. Members may rename themselves; role and
// active-flag changes need a tenant admin.
func (s *UserService) Update(ctx context.Context, id domain.Identity, userID uuid.UUID, patch domain.UserUpdate, ip string) (*domain.User, error) {
	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}
	// Platform identities are not visible to tenant callers.
	if target.TenantID == nil && id.Role != domain.RoleSuperAdmin {
		return nil, domain.ErrNotFound
	}

	res := authz.Resource{TenantID: target.TenantID, OwnerID: &target.ID}
	if err := authz.Decide(id, authz.OpUserUpdate, res).Err(); err != nil {
		return nil, err
	}
	if patch.IsZero() {
		return nil, domain.ErrValidation
	}
	if id.Role != domain.RoleTenantAdmin && (patch.Role != nil || patch.IsActive != nil) {
		return nil, domain.ErrInsufficientRole
	}

	user, err := s.userRepo.Update(ctx, userID, &patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	s.audit.Record(ctx, target.TenantID, id.ID, domain.ActionUpdateUser, "user", userID, ip)

	return user, nil
}

// Delete removes a member. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id domain.Identity, userID uuid.UUID, ip string) error {
	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return domain.ErrNotFound
	}
	if target.TenantID == nil && id.Role != domain.RoleSuperAdmin {
		return domain.ErrNotFound
	}

	res := authz.Resource{TenantID: target.TenantID, OwnerID: &target.ID}
	if err := authz.Decide(id, authz.OpUserDelete, res).Err(); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.audit.Record(ctx, target.TenantID, id.ID, domain.ActionDeleteUser, "user", userID, ip)

	return nil
}

// normalizePage clamps pagination to sane bounds
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
