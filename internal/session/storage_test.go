package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tidytab/internal/errors"
	"tidytab/internal/session/sessiontest"
	"tidytab/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	sessiontest.RunStoreContract(t, func(t *testing.T) ports.SessionStore {
		return NewMemoryStore()
	})
}

func TestLocalBlobStore(t *testing.T) {
	sessiontest.RunStoreContract(t, func(t *testing.T) ports.SessionStore {
		store, err := NewLocalBlobStore(t.TempDir())
		require.NoError(t, err)
		return store
	})
}

func TestLimitedStore(t *testing.T) {
	sessiontest.RunStoreContract(t, func(t *testing.T) ports.SessionStore {
		return NewLimitedStore(NewMemoryStore(), 1024)
	})
}

func TestLimitedStore_RejectsLargePayloads(t *testing.T) {
	inner := NewMemoryStore()
	store := NewLimitedStore(inner, 8)
	ctx := context.Background()

	_, err := store.Put(ctx, "s1/cleaned_df", []byte("123456789"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodePayloadTooLarge))

	v, err := store.Put(ctx, "s1/cleaned_df", []byte("12345678"))
	require.NoError(t, err)

	_, err = store.CompareAndSwap(ctx, "s1/cleaned_df", []byte("123456789"), v)
	assert.True(t, errors.HasCode(err, errors.CodePayloadTooLarge))

	rec, _, err := inner.Get(ctx, "s1/cleaned_df")
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(rec.Payload))
}

func TestLimitedStore_DefaultCap(t *testing.T) {
	assert.Equal(t, int64(16<<20), NewLimitedStore(NewMemoryStore(), 0).MaxSize())
	assert.Equal(t, int64(8), NewLimitedStore(NewMemoryStore(), 8).MaxSize())
}

func TestMemoryStore_Prune(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := store.Put(ctx, "old/cleaned_df", []byte(`{}`))
	require.NoError(t, err)
	now = now.Add(2 * time.Hour)
	_, err = store.Put(ctx, "new/cleaned_df", []byte(`{}`))
	require.NoError(t, err)

	removed, err := store.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, found, _ := store.Get(ctx, "old/cleaned_df")
	assert.False(t, found)
	_, found, _ = store.Get(ctx, "new/cleaned_df")
	assert.True(t, found)
}

func TestLocalBlobStore_PruneByModTime(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalBlobStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Put(ctx, "old/cleaned_df", []byte(`{}`))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old", "cleaned_df.json"), past, past))

	removed, err := store.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestLocalBlobStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape", []byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
