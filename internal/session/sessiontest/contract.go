// Package sessiontest holds the behaviour every ports.SessionStore must share.
package sessiontest

import (
	"context"
	"testing"
	"time"

	"tidytab/internal/errors"
	"tidytab/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract exercises a fresh store returned by newStore
func RunStoreContract(t *testing.T, newStore func(t *testing.T) ports.SessionStore) {
	t.Run("GetMissing", func(t *testing.T) {
		store := newStore(t)

		rec, found, err := store.Get(context.Background(), "s1/cleaned_df")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, rec)
	})

	t.Run("PutBumpsVersion", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		v1, err := store.Put(ctx, "s1/cleaned_df", []byte(`{"a":1}`))
		require.NoError(t, err)
		v2, err := store.Put(ctx, "s1/cleaned_df", []byte(`{"a":2}`))
		require.NoError(t, err)
		assert.Greater(t, v2, v1)

		rec, found, err := store.Get(ctx, "s1/cleaned_df")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, `{"a":2}`, string(rec.Payload))
		assert.Equal(t, v2, rec.Version)
	})

	t.Run("CompareAndSwap", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		v1, err := store.Put(ctx, "s1/viz", []byte(`{"n":0}`))
		require.NoError(t, err)

		v2, err := store.CompareAndSwap(ctx, "s1/viz", []byte(`{"n":1}`), v1)
		require.NoError(t, err)
		assert.Greater(t, v2, v1)

		_, err = store.CompareAndSwap(ctx, "s1/viz", []byte(`{"n":"stale"}`), v1)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeVersionConflict))

		rec, _, err := store.Get(ctx, "s1/viz")
		require.NoError(t, err)
		assert.Equal(t, `{"n":1}`, string(rec.Payload), "a stale write must not land")
	})

	t.Run("CompareAndSwapMissing", func(t *testing.T) {
		store := newStore(t)

		_, err := store.CompareAndSwap(context.Background(), "nobody/viz", []byte(`{}`), 1)
		assert.True(t, errors.HasCode(err, errors.CodeVersionConflict))
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Put(ctx, "s1/cleaned_df", []byte(`"one"`))
		require.NoError(t, err)
		_, err = store.Put(ctx, "s2/cleaned_df", []byte(`"two"`))
		require.NoError(t, err)

		rec, _, err := store.Get(ctx, "s1/cleaned_df")
		require.NoError(t, err)
		assert.Equal(t, `"one"`, string(rec.Payload))
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Put(ctx, "s1/cleaned_df", []byte(`{}`))
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, "s1/cleaned_df"))
		require.NoError(t, store.Delete(ctx, "s1/cleaned_df"))

		_, found, err := store.Get(ctx, "s1/cleaned_df")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("DeleteNeverRecyclesVersions", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		before, err := store.Put(ctx, "s1/cleaned_df", []byte(`"first upload"`))
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, "s1/cleaned_df"))
		after, err := store.Put(ctx, "s1/cleaned_df", []byte(`"second upload"`))
		require.NoError(t, err)
		assert.Greater(t, after, before)

		_, err = store.CompareAndSwap(ctx, "s1/cleaned_df", []byte(`"decision on first upload"`), before)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeVersionConflict))

		rec, _, err := store.Get(ctx, "s1/cleaned_df")
		require.NoError(t, err)
		assert.Equal(t, `"second upload"`, string(rec.Payload))
	})

	t.Run("PruneKeepsFreshRecords", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Put(ctx, "s1/cleaned_df", []byte(`{}`))
		require.NoError(t, err)

		removed, err := store.Prune(ctx, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 0, removed)

		_, found, err := store.Get(ctx, "s1/cleaned_df")
		require.NoError(t, err)
		assert.True(t, found)
	})
}
