package domain

import "errors"

// Sentinel errors returned by services and mapped to transport statuses by
// the API layer. ErrCrossTenantAccess is deliberately surfaced to clients as
// a not-found so the existence of another tenant's resources is never
// confirmed.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrTenantSuspended    = errors.New("tenant account is suspended")
	ErrSubdomainTaken     = errors.New("subdomain already exists")
	ErrEmailTaken         = errors.New("email already exists in this tenant")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrReadOnlyRole       = errors.New("super admin has read-only access")
	ErrCrossTenantAccess  = errors.New("resource belongs to another tenant")
	ErrInsufficientRole   = errors.New("insufficient permissions")
	ErrNotOwner           = errors.New("not the resource owner")
	ErrSelfAction         = errors.New("cannot perform this action on yourself")
	ErrQuotaExceeded      = errors.New("subscription limit reached")
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("resource not found")
	ErrStoreUnavailable   = errors.New("datastore temporarily unavailable")
)
