package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/calleja/taskforge/internal/domain"
	"github.com/calleja/taskforge/internal/security"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   domain.UserRepository
	tenantRepo domain.TenantRepository
	tokens     *security.TokenCodec
	audit      *AuditRecorder
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	tenantRepo domain.TenantRepository,
	tokens *security.TokenCodec,
	audit *AuditRecorder,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		tokens:     tokens,
		audit:      audit,
	}
}

// Login authenticates a user and issues a session token. A subdomain scopes
// the lookup to that tenant; when the tenant has no such member the lookup
// falls back to the platform identity space, so super admins can sign in
// through any tenant's login page. Missing users, inactive accounts, and bad
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin, ip string) (*domain.AuthResult, error) {
	var tenantID *uuid.UUID
	if input.TenantSubdomain != "" {
		tenant, err := s.tenantRepo.GetBySubdomain(ctx, input.TenantSubdomain)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tenant: %w", err)
		}
		if tenant == nil {
			return nil, domain.ErrTenantNotFound
		}
		if tenant.Status == domain.TenantSuspended {
			return nil, domain.ErrTenantSuspended
		}
		tenantID = &tenant.ID
	}

	user, err := s.userRepo.GetByEmail(ctx, tenantID, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil && tenantID != nil {
		user, err = s.userRepo.GetByEmail(ctx, nil, input.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	if !security.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.audit.Record(ctx, user.TenantID, user.ID, domain.ActionLogin, "user", user.ID, ip)

	return &domain.AuthResult{
		User:      user,
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Logout records the event. Tokens are stateless and stay valid until
// expiry; there is nothing to revoke server-side.
func (s *AuthService) Logout(ctx context.Context, id domain.Identity, ip string) {
	s.audit.Record(ctx, id.TenantID, id.ID, domain.ActionLogout, "user", id.ID, ip)
}
