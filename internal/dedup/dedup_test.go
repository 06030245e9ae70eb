package dedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loginflow-systems/login-etl/internal/dedup"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestMemorySetAdmit(t *testing.T) {
	ctx := context.Background()
	set := dedup.NewMemorySet()

	admitted, err := set.Admit(ctx, "A")
	require.NoError(t, err)
	assert.True(t, admitted, "first admit of A")

	admitted, err = set.Admit(ctx, "A")
	require.NoError(t, err)
	assert.False(t, admitted, "second admit of A")

	admitted, err = set.Admit(ctx, "B")
	require.NoError(t, err)
	assert.True(t, admitted, "first admit of B")

	assert.Equal(t, 2, set.Len())
}

func TestRedisSetAdmit(t *testing.T) {
	_, client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	set := dedup.NewRedisSet(client, "login-etl:seen", 0)

	admitted, err := set.Admit(ctx, "A")
	require.NoError(t, err)
	assert.True(t, admitted)

	admitted, err = set.Admit(ctx, "A")
	require.NoError(t, err)
	assert.False(t, admitted)

	// A second set sharing the key sees identifiers admitted by the first:
	// this is the externally seeded cross-run case.
	other := dedup.NewRedisSet(client, "login-etl:seen", 0)
	admitted, err = other.Admit(ctx, "A")
	require.NoError(t, err)
	assert.False(t, admitted, "id seeded by a prior run must not be re-admitted")

	admitted, err = other.Admit(ctx, "C")
	require.NoError(t, err)
	assert.True(t, admitted)
}

func TestRedisSetTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	set := dedup.NewRedisSet(client, "login-etl:seen", time.Hour)

	admitted, err := set.Admit(ctx, "A")
	require.NoError(t, err)
	require.True(t, admitted)

	// Fast forward time in miniredis past the expiry.
	mr.FastForward(2 * time.Hour)

	admitted, err = set.Admit(ctx, "A")
	require.NoError(t, err)
	assert.True(t, admitted, "expired set forgets admitted ids")
}

func TestRedisSetConnectionError(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	set := dedup.NewRedisSet(client, "login-etl:seen", 0)

	mr.Close()

	_, err := set.Admit(ctx, "A")
	assert.Error(t, err, "redis outage must surface, not silently disable dedup")
}
