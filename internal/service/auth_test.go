package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/calleja/taskforge/internal/domain"
	"github.com/calleja/taskforge/internal/security"
)

func newAuthService(userRepo *MockUserRepository, tenantRepo *MockTenantRepository) *AuthService {
	audit, _ := quietAudit()
	codec := security.NewTokenCodec("test-secret-key-with-32-chars!!!", time.Hour)
	return NewAuthService(userRepo, tenantRepo, codec, audit)
}

func activeUser(tenantID *uuid.UUID, password string) *domain.User {
	hash, _ := security.HashPassword(password)
	return &domain.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        "alice@example.com",
		PasswordHash: hash,
		FullName:     "Alice",
		Role:         domain.RoleUser,
		IsActive:     true,
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	tenant := &domain.Tenant{ID: tenantID, Subdomain: "acme", Status: domain.TenantActive}

	t.Run("tenant member", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		user := activeUser(&tenantID, "s3cret-pass")

		tenantRepo.On("GetBySubdomain", ctx, "acme").Return(tenant, nil)
		userRepo.On("GetByEmail", ctx, &tenantID, "alice@example.com").Return(user, nil)

		svc := newAuthService(userRepo, tenantRepo)
		result, err := svc.Login(ctx, domain.UserLogin{
			Email:           "alice@example.com",
			Password:        "s3cret-pass",
			TenantSubdomain: "acme",
		}, "10.0.0.1")

		assert.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, user.ID, result.User.ID)
		assert.Equal(t, int64(3600), result.ExpiresIn)
	})

	t.Run("platform fallback through tenant login", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		super := activeUser(nil, "root-pass")
		super.Role = domain.RoleSuperAdmin

		tenantRepo.On("GetBySubdomain", ctx, "acme").Return(tenant, nil)
		userRepo.On("GetByEmail", ctx, &tenantID, "alice@example.com").Return(nil, nil)
		userRepo.On("GetByEmail", ctx, (*uuid.UUID)(nil), "alice@example.com").Return(super, nil)

		svc := newAuthService(userRepo, tenantRepo)
		result, err := svc.Login(ctx, domain.UserLogin{
			Email:           "alice@example.com",
			Password:        "root-pass",
			TenantSubdomain: "acme",
		}, "10.0.0.1")

		assert.NoError(t, err)
		assert.Nil(t, result.User.TenantID)
		userRepo.AssertExpectations(t)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		tenantRepo.On("GetBySubdomain", ctx, "ghost").Return(nil, nil)

		svc := newAuthService(userRepo, tenantRepo)
		_, err := svc.Login(ctx, domain.UserLogin{
			Email:           "alice@example.com",
			Password:        "whatever",
			TenantSubdomain: "ghost",
		}, "10.0.0.1")

		assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	})

	t.Run("suspended tenant", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		suspended := &domain.Tenant{ID: tenantID, Subdomain: "acme", Status: domain.TenantSuspended}
		tenantRepo.On("GetBySubdomain", ctx, "acme").Return(suspended, nil)

		svc := newAuthService(userRepo, tenantRepo)
		_, err := svc.Login(ctx, domain.UserLogin{
			Email:           "alice@example.com",
			Password:        "s3cret-pass",
			TenantSubdomain: "acme",
		}, "10.0.0.1")

		assert.ErrorIs(t, err, domain.ErrTenantSuspended)
	})

	t.Run("indistinguishable failures", func(t *testing.T) {
		inactive := activeUser(&tenantID, "s3cret-pass")
		inactive.IsActive = false
		wrongPw := activeUser(&tenantID, "s3cret-pass")

		cases := []struct {
			name     string
			stored   *domain.User
			password string
		}{
			{"missing user", nil, "s3cret-pass"},
			{"inactive user", inactive, "s3cret-pass"},
			{"wrong password", wrongPw, "not-the-pass"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				userRepo := new(MockUserRepository)
				tenantRepo := new(MockTenantRepository)
				tenantRepo.On("GetBySubdomain", ctx, "acme").Return(tenant, nil)
				userRepo.On("GetByEmail", ctx, mock.Anything, "alice@example.com").Return(tc.stored, nil)

				svc := newAuthService(userRepo, tenantRepo)
				_, err := svc.Login(ctx, domain.UserLogin{
					Email:           "alice@example.com",
					Password:        tc.password,
					TenantSubdomain: "acme",
				}, "10.0.0.1")

				assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
			})
		}
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		tenantRepo.On("GetBySubdomain", ctx, "acme").Return(nil, errors.New("connection reset"))

		svc := newAuthService(userRepo, tenantRepo)
		_, err := svc.Login(ctx, domain.UserLogin{
			Email:           "alice@example.com",
			Password:        "s3cret-pass",
			TenantSubdomain: "acme",
		}, "10.0.0.1")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_Logout(t *testing.T) {
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)
	auditRepo := new(MockAuditRepository)
	auditRepo.On("Insert", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.ActionLogout
	})).Return(nil)

	codec := security.NewTokenCodec("test-secret-key-with-32-chars!!!", time.Hour)
	svc := NewAuthService(userRepo, tenantRepo, codec, NewAuditRecorder(auditRepo))

	tenantID := uuid.New()
	svc.Logout(context.Background(), domain.Identity{ID: uuid.New(), TenantID: &tenantID, Role: domain.RoleUser}, "10.0.0.1")

	auditRepo.AssertExpectations(t)
}
