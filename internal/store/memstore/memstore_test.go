package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/folio/internal/core/document"
)

func TestStateStore_RoundTripAndIsolation(t *testing.T) {
	store := New()
	info := document.Info{ID: document.IDForPath("/tmp/a.pdf"), Path: "/tmp/a.pdf", PageCount: 3}

	loaded, err := store.Load(info)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	state := document.DefaultState()
	state.Marks["a"] = 1
	require.NoError(t, store.Save(info, &state))

	// Mutating the saved-from state must not leak into the store.
	state.Marks["a"] = 2

	loaded, err = store.Load(info)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.Marks["a"])
	assert.Equal(t, 1, store.Len())
}
