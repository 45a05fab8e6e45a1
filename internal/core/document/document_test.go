package document

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/folio/internal/core/geom"
)

func TestIDForPath_Stable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.pdf")
	require.NoError(t, os.WriteFile(path, []byte("dummy"), 0o644))

	assert.Equal(t, IDForPath(path), IDForPath(path))
	assert.NotEqual(t, IDForPath(path), IDForPath(filepath.Join(dir, "other.pdf")))
}

func TestIDForPath_MissingFileStillDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.pdf")
	assert.Equal(t, IDForPath(path), IDForPath(path))
}

func TestPersistedState_JSONDefaults(t *testing.T) {
	// Older state files may omit named marks and viewport entirely.
	var state PersistedState
	require.NoError(t, json.Unmarshal([]byte(`{"current_page":3,"scale":1.5,"dark_mode":true,"marks":{"a":1}}`), &state))

	state.Normalize(10)

	assert.Equal(t, 3, state.CurrentPage)
	assert.Equal(t, 1.5, state.Scale)
	assert.True(t, state.DarkMode)
	assert.Equal(t, map[string]int{"a": 1}, state.Marks)
	assert.NotNil(t, state.NamedMarks)
	assert.Equal(t, geom.Offset{}, state.Viewport)
}

func TestPersistedState_RoundTrip(t *testing.T) {
	state := DefaultState()
	state.CurrentPage = 7
	state.Scale = 2.0
	state.DarkMode = true
	state.Marks["a"] = 3
	state.NamedMarks["intro"] = 1
	state.Viewport = geom.Offset{X: 0.25, Y: 0.5}

	data, err := json.Marshal(&state)
	require.NoError(t, err)

	var restored PersistedState
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, state, restored)
}

func TestPersistedState_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		state     PersistedState
		pageCount int
		check     func(t *testing.T, s PersistedState)
	}{
		{
			name:      "page clamped to last page",
			state:     PersistedState{CurrentPage: 50, Scale: 1},
			pageCount: 10,
			check: func(t *testing.T, s PersistedState) {
				assert.Equal(t, 9, s.CurrentPage)
			},
		},
		{
			name:      "scale clamped into bounds",
			state:     PersistedState{Scale: 9.5},
			pageCount: 10,
			check: func(t *testing.T, s PersistedState) {
				assert.Equal(t, MaxScale, s.Scale)
			},
		},
		{
			name:      "zero scale defaults to one",
			state:     PersistedState{},
			pageCount: 10,
			check: func(t *testing.T, s PersistedState) {
				assert.Equal(t, 1.0, s.Scale)
			},
		},
		{
			name: "stale marks dropped",
			state: PersistedState{
				Scale:      1,
				Marks:      map[string]int{"a": 2, "b": 99},
				NamedMarks: map[string]int{"keep": 1, "drop": 12},
			},
			pageCount: 10,
			check: func(t *testing.T, s PersistedState) {
				assert.Equal(t, map[string]int{"a": 2}, s.Marks)
				assert.Equal(t, map[string]int{"keep": 1}, s.NamedMarks)
			},
		},
		{
			name:      "viewport reset at unit scale",
			state:     PersistedState{Scale: 1, Viewport: geom.Offset{X: 0.5, Y: 0.5}},
			pageCount: 10,
			check: func(t *testing.T, s PersistedState) {
				assert.Equal(t, geom.Offset{}, s.Viewport)
			},
		},
		{
			name:      "viewport clamped when zoomed",
			state:     PersistedState{Scale: 2, Viewport: geom.Offset{X: 1.5, Y: -0.5}},
			pageCount: 10,
			check: func(t *testing.T, s PersistedState) {
				assert.Equal(t, geom.Offset{X: 1, Y: 0}, s.Viewport)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.state
			s.Normalize(tt.pageCount)
			tt.check(t, s)
		})
	}
}
