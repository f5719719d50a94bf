package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/calleja/taskforge/internal/domain"
)

// Claims is the stateless claim set embedded in a session token. Tokens stay
// valid until expiry regardless of later account changes; there is no
// revocation list.
type Claims struct {
	UserID   uuid.UUID  `json:"sub"`
	TenantID *uuid.UUID `json:"tenant_id,omitempty"`
	Role     string     `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the claim set as a canonical identity. Role spelling is
// normalized here, at the claim boundary, so nothing downstream ever sees
// the legacy "superadmin" variant.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{
		ID:       c.UserID,
		TenantID: c.TenantID,
		Role:     domain.NormalizeRole(c.Role),
	}
}

// TokenCodec issues and verifies signed session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a token codec with a process-wide secret and a fixed
// validity window.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue produces a signed token for the given user.
func (c *TokenCodec) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "taskforge",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature and expiry and returns the claim set.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	return claims, nil
}

// TTL returns the configured token validity window.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}
