package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/apperrors"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "discovery:ds1:db:schema:true", []byte(`{"run_id":"r1"}`), time.Minute))

	got, err := store.Get(ctx, "discovery:ds1:db:schema:true")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"run_id":"r1"}`), got)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), 10*time.Minute))

	_, err := store.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(11 * time.Minute)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryStoreDeleteIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("abc"), time.Minute))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}
