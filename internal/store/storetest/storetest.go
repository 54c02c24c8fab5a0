// Package storetest holds the behaviour every store.Store backend must
// share. Backend tests call Run with a factory returning a fresh store.
package storetest

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/MrSnakeDoc/pathways/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an uninitialised store. Run calls Init itself.
type Factory func(t *testing.T) store.Store

// Run exercises the store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	open := func(t *testing.T) store.Store {
		t.Helper()
		s := newStore(t)
		require.NoError(t, s.Init(context.Background()))
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("init is idempotent", func(t *testing.T) {
		s := open(t)
		assert.NoError(t, s.Init(context.Background()))
	})

	t.Run("get missing key", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(context.Background(), store.Settings, "nope")
		assert.True(t, store.IsNotFound(err), "got %v", err)
	})

	t.Run("put then get", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, store.Pathways, "1", []byte(`{"id":"1"}`)))

		got, err := s.Get(ctx, store.Pathways, "1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"1"}`, string(got))
	})

	t.Run("put overwrites whole record", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, store.Settings, "theme", []byte(`{"a":1,"b":2}`)))
		require.NoError(t, s.Put(ctx, store.Settings, "theme", []byte(`{"a":3}`)))

		got, err := s.Get(ctx, store.Settings, "theme")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":3}`, string(got))
	})

	t.Run("collections are isolated", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, store.Settings, store.ConfigKey, []byte(`"settings"`)))
		require.NoError(t, s.Put(ctx, store.GitHub, store.ConfigKey, []byte(`"github"`)))

		got, err := s.Get(ctx, store.GitHub, store.ConfigKey)
		require.NoError(t, err)
		assert.Equal(t, `"github"`, string(got))

		all, err := s.GetAll(ctx, store.Pathways)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("get all", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		for _, k := range []string{"b", "a", "c"} {
			require.NoError(t, s.Put(ctx, store.Pathways, k, []byte(`"`+k+`"`)))
		}

		all, err := s.GetAll(ctx, store.Pathways)
		require.NoError(t, err)
		keys := make([]string, 0, len(all))
		for _, r := range all {
			keys = append(keys, r.Key)
			assert.Equal(t, `"`+r.Key+`"`, string(r.Value))
		}
		sort.Strings(keys)
		assert.Equal(t, []string{"a", "b", "c"}, keys)
	})

	t.Run("keys that look like internal names", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		keys := []string{"all", "index", "rec", "theme", "a:b", "all:x"}
		for _, c := range store.Collections() {
			for _, k := range keys {
				require.NoError(t, s.Put(ctx, c, k, []byte(`"`+string(c)+"/"+k+`"`)), "%s/%s", c, k)
			}
		}

		for _, c := range store.Collections() {
			all, err := s.GetAll(ctx, c)
			require.NoError(t, err, "list %s", c)
			got := make([]string, 0, len(all))
			for _, r := range all {
				got = append(got, r.Key)
				assert.Equal(t, `"`+string(c)+"/"+r.Key+`"`, string(r.Value))
			}
			assert.ElementsMatch(t, keys, got, "collection %s", c)
		}

		require.NoError(t, s.Delete(ctx, store.Settings, "all"))
		assert.Equal(t, len(keys)-1, Count(t, s, store.Settings))
		v, err := s.Get(ctx, store.Settings, "theme")
		require.NoError(t, err)
		assert.Equal(t, `"settings/theme"`, string(v))
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, store.Pathways, "1", []byte(`{}`)))
		require.NoError(t, s.Delete(ctx, store.Pathways, "1"))

		_, err := s.Get(ctx, store.Pathways, "1")
		assert.True(t, store.IsNotFound(err))

		all, err := s.GetAll(ctx, store.Pathways)
		require.NoError(t, err)
		assert.Empty(t, all)

		assert.NoError(t, s.Delete(ctx, store.Pathways, "missing"))
	})

	t.Run("unknown collection", func(t *testing.T) {
		s := open(t)
		err := s.Put(context.Background(), store.Collection("bookmarks"), "k", []byte(`1`))
		assert.True(t, errors.Is(err, store.ErrUnknownCollection), "got %v", err)
	})

	t.Run("use before init", func(t *testing.T) {
		s := newStore(t)
		t.Cleanup(func() { _ = s.Close() })
		_, err := s.Get(context.Background(), store.Settings, "k")
		assert.Error(t, err)
	})
}

// Count returns the number of records in c, failing t on error.
func Count(t *testing.T, s store.Store, c store.Collection) int {
	t.Helper()
	all, err := s.GetAll(context.Background(), c)
	require.NoError(t, err)
	return len(all)
}
