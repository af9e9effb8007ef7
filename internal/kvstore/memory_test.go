package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	version, err := s.Put(ctx, "user:abc", []byte(`{"a":1}`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	rec, err := s.Get(ctx, "user:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), rec.Value)
	assert.Equal(t, int64(1), rec.Version)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "user:missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCreateConflict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Put(ctx, "user:abc", []byte("one"), 0)
	require.NoError(t, err)

	_, err = s.Put(ctx, "user:abc", []byte("two"), 0)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestMemoryStoreVersionConflict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	v1, err := s.Put(ctx, "user:abc", []byte("one"), 0)
	require.NoError(t, err)

	v2, err := s.Put(ctx, "user:abc", []byte("two"), v1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)

	// A writer holding the stale version must lose.
	_, err = s.Put(ctx, "user:abc", []byte("three"), v1)
	assert.ErrorIs(t, err, ErrVersionConflict)

	rec, err := s.Get(ctx, "user:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), rec.Value)
}

func TestMemoryStoreGetByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Put(ctx, "tx:user:u1:b", []byte("2"), 0)
	require.NoError(t, err)
	_, err = s.Put(ctx, "tx:user:u1:a", []byte("1"), 0)
	require.NoError(t, err)
	_, err = s.Put(ctx, "tx:user:u2:c", []byte("3"), 0)
	require.NoError(t, err)

	recs, err := s.GetByPrefix(ctx, "tx:user:u1:")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "tx:user:u1:a", recs[0].Key)
	assert.Equal(t, "tx:user:u1:b", recs[1].Key)

	recs, err = s.GetByPrefix(ctx, "tx:user:u3:")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
