package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoursGuard/storage/kv"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hg.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "local:records")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Set(ctx, "local:records", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "local:records", []byte(`[{"date":"2024-01-15","on":"09:00"}]`)))
	require.NoError(t, s.Set(ctx, "other:records", []byte(`[]`)))

	got, err := s.Get(ctx, "local:records")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"date":"2024-01-15","on":"09:00"}]`, string(got))

	keys, err := s.Keys(ctx, "local:")
	require.NoError(t, err)
	assert.Equal(t, []string{"local:records"}, keys)

	require.NoError(t, s.Close(ctx))

	// 重新打开后数据仍在
	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close(ctx)

	require.NoError(t, s.Delete(ctx, "local:records"))
	_, err = s.Get(ctx, "local:records")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}
