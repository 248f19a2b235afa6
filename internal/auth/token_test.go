package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camino-saas/camino/internal/shared"
)

func newTestManager(t *testing.T, ttl time.Duration) (*TokenManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenManager("test-secret", ttl, client), mr
}

func testIdentity() shared.Identity {
	return shared.Identity{
		UserID:   42,
		TenantID: 7,
		Name:     "Marta",
		Role:     shared.RoleAdmin,
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	tm, _ := newTestManager(t, time.Hour)

	raw, err := tm.Issue(testIdentity())
	require.NoError(t, err)

	identity, err := tm.Parse(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), identity.UserID)
	assert.Equal(t, int64(7), identity.TenantID)
	assert.Equal(t, "Marta", identity.Name)
	assert.Equal(t, shared.RoleAdmin, identity.Role)
	assert.NotEmpty(t, identity.TokenID)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	tm, _ := newTestManager(t, time.Hour)

	raw, err := tm.Issue(testIdentity())
	require.NoError(t, err)

	other := NewTokenManager("different-secret", time.Hour, nil)
	_, err = other.Parse(context.Background(), raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.Parse(context.Background(), raw+"x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.Parse(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	tm, _ := newTestManager(t, time.Hour)

	raw, err := tm.Issue(testIdentity())
	require.NoError(t, err)

	identity, err := tm.Parse(context.Background(), raw)
	require.NoError(t, err)

	require.NoError(t, tm.Revoke(context.Background(), identity.TokenID))

	_, err = tm.Parse(context.Background(), raw)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevocationExpiresWithToken(t *testing.T) {
	tm, mr := newTestManager(t, time.Minute)

	raw, err := tm.Issue(testIdentity())
	require.NoError(t, err)
	identity, err := tm.Parse(context.Background(), raw)
	require.NoError(t, err)
	require.NoError(t, tm.Revoke(context.Background(), identity.TokenID))

	// After the token lifetime the revocation entry lapses too; the token
	// itself is expired by then, so nothing is kept forever.
	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("auth:revoked:"+identity.TokenID))
}
