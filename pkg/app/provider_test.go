package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appwire/appwire/pkg/app"
	"github.com/appwire/appwire/pkg/errors"
	"github.com/appwire/appwire/pkg/identity"
)

func TestProviderViews(t *testing.T) {
	a := app.New()
	store := &testStore{}
	_, err := a.RegisterStore("s", store)
	require.NoError(t, err)

	provider := a.Provider()

	t.Run("known kinds", func(t *testing.T) {
		for _, kind := range []string{"actions", "stores", "widgets"} {
			v, err := provider.Get(kind)
			require.NoError(t, err, "kind %s", kind)
			require.NotNil(t, v)
		}
	})

	t.Run("view operations mirror the space", func(t *testing.T) {
		stores, err := provider.Get("stores")
		require.NoError(t, err)

		assert.True(t, stores.Has("s"))
		assert.False(t, stores.Has("missing"))

		got, err := stores.Get(context.Background(), "s")
		require.NoError(t, err)
		assert.Same(t, store, got)

		id, err := stores.Identify(store)
		require.NoError(t, err)
		assert.Equal(t, identity.Identifier("s"), id)

		actions, err := provider.Get("actions")
		require.NoError(t, err)
		assert.False(t, actions.Has("s"), "views are kind-scoped")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := provider.Get("gadgets")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNoSuchKind))
		assert.Contains(t, err.Error(), "No such store: gadgets")
	})
}

func TestProviderIdentifyMessages(t *testing.T) {
	a := app.New()
	provider := a.Provider()

	_, err := provider.IdentifyAction(&testAction{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not identify action")

	_, err = provider.IdentifyStore(&testStore{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not identify store")

	_, err = provider.IdentifyWidget(&testWidget{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not identify widget")
}
