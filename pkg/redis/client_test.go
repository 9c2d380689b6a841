package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name        string
		url         string
		expectError bool
	}{
		{name: "Valid Redis URL", url: "redis://" + mr.Addr(), expectError: false},
		{name: "Invalid scheme", url: "invalid://url", expectError: true},
		{name: "Empty URL", url: "", expectError: true},
		{name: "Unreachable server", url: "redis://127.0.0.1:1", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "test", nil)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client.KeyBuilder)
			assert.NoError(t, client.Close())
		})
	}
}

func TestClient_GetDelete(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, mr.Set("b", "2"))

	val, err := client.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", val)

	_, err = client.Get(ctx, "missing")
	assert.ErrorIs(t, err, Nil)

	require.NoError(t, client.Delete(ctx, "a", "b"))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
}

func TestClient_IncrWithTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	v, err := client.IncrWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, time.Minute, mr.TTL("counter"))

	mr.FastForward(20 * time.Second)

	v, err = client.IncrWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	assert.Equal(t, 40*time.Second, mr.TTL("counter"), "existing TTL is not extended")

	ttl, err := client.TTL(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, 40*time.Second, ttl)

	mr.FastForward(41 * time.Second)
	v, err = client.IncrWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestClient_TTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	ttl, err := client.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-2), ttl, "missing key")

	require.NoError(t, mr.Set("persistent", "1"))
	ttl, err = client.TTL(ctx, "persistent")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "key without expiry")
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, client.Health(ctx))

	mr.SetError("server down")
	assert.Error(t, client.Health(ctx))
	mr.SetError("")
}

func TestPrefixForLog(t *testing.T) {
	assert.Equal(t, "short", prefixForLog("short"))
	assert.Equal(t, "bolt:prod:auth:login:abc…", prefixForLog("bolt:prod:auth:login:abcdef:attempts"))
}
