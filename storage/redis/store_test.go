package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoursGuard/storage/kv"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "hg:device:records", Key("hg", "device", "records"))
	assert.Equal(t, "hg:records", Key("", "", "records"))
}

// 需要可用的 Redis，通过 HG_TEST_REDIS_ADDR 指定
func TestStore_Integration(t *testing.T) {
	addr := os.Getenv("HG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HG_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	s := NewStore(client, "hgtest-"+uuid.NewString())

	_, err := s.Get(ctx, "records")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Set(ctx, "dev:records", []byte(`[]`)))
	got, err := s.Get(ctx, "dev:records")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	keys, err := s.Keys(ctx, "dev:")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev:records"}, keys)

	require.NoError(t, s.Delete(ctx, "dev:records"))
}
