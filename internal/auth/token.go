// Package auth issues and validates tenant-scoped bearer tokens.
package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/camino-saas/camino/internal/shared"
)

var (
	ErrTokenInvalid = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Claims is the custom JWT payload. Tenant and role travel with the token so
// request handlers never need a user lookup for scoping decisions.
type Claims struct {
	UserID   int64       `json:"uid"`
	TenantID int64       `json:"tid"`
	Name     string      `json:"name"`
	Role     shared.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs, parses and revokes bearer tokens. Revocations are kept
// in Redis until the token would have expired anyway.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, ttl time.Duration, client *redis.Client) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, redis: client}
}

// Issue creates a signed token for the given identity.
func (tm *TokenManager) Issue(identity shared.Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   identity.UserID,
		TenantID: identity.TenantID,
		Name:     identity.Name,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(identity.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Parse validates a raw token string and returns the caller identity.
// Revoked tokens are rejected even when their signature is still valid.
func (tm *TokenManager) Parse(ctx context.Context, raw string) (*shared.Identity, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	if tm.redis != nil && claims.ID != "" {
		revoked, err := tm.redis.Exists(ctx, revocationKey(claims.ID)).Result()
		if err == nil && revoked > 0 {
			return nil, ErrTokenRevoked
		}
	}

	return &shared.Identity{
		UserID:   claims.UserID,
		TenantID: claims.TenantID,
		Name:     claims.Name,
		Role:     claims.Role,
		TokenID:  claims.ID,
	}, nil
}

// Revoke blacklists a token id for the remainder of the token lifetime.
func (tm *TokenManager) Revoke(ctx context.Context, tokenID string) error {
	if tm.redis == nil || tokenID == "" {
		return nil
	}
	return tm.redis.Set(ctx, revocationKey(tokenID), "1", tm.ttl).Err()
}

func revocationKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}
