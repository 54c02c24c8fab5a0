package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/pathways/internal/store"
	"github.com/MrSnakeDoc/pathways/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestInitHookFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	s := New(WithInitHook(func(context.Context) error { return boom }))

	err := s.Init(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestValuesAreCopied(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	v := []byte(`"a"`)
	require.NoError(t, s.Put(ctx, store.Settings, "k", v))
	v[1] = 'z'

	got, err := s.Get(ctx, store.Settings, "k")
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(got))
	assert.Equal(t, 1, storetest.Count(t, s, store.Settings))
}

func TestClosedStore(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Close())

	_, err := s.GetAll(ctx, store.Pathways)
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
	assert.ErrorIs(t, s.Init(ctx), store.ErrStoreUnavailable)
}
