package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDenylist(t *testing.T) (*TokenDenylist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenDenylist(client), mr
}

func TestTokenDenylist_RevokeAndExpire(t *testing.T) {
	d, mr := newTestDenylist(t)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Minute))
	assert.True(t, mr.Exists("auth:revoked:jti-1"))
	assert.Equal(t, time.Minute, mr.TTL("auth:revoked:jti-1"))

	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenDenylist_ExpiredTokenIsNotStored(t *testing.T) {
	d, mr := newTestDenylist(t)

	require.NoError(t, d.Revoke(context.Background(), "old", 0))
	assert.False(t, mr.Exists("auth:revoked:old"))
}

func TestTokenDenylist_RedisDown(t *testing.T) {
	d, mr := newTestDenylist(t)
	mr.Close()

	_, err := d.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
	assert.Error(t, d.Revoke(context.Background(), "jti", time.Minute))
}
