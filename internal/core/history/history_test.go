package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/folio/internal/core/document"
)

func pos(page int) document.Position {
	return document.Position{Page: page, Scale: 1}
}

func TestHistory_BackwardThenForwardRoundTrips(t *testing.T) {
	h := New()
	h.RecordInitial(pos(0))
	h.RecordNavigation(pos(0), pos(12))
	h.RecordNavigation(pos(12), pos(25))

	back, ok := h.JumpBackward(pos(25))
	require.True(t, ok)
	assert.Equal(t, pos(12), back)

	fwd, ok := h.JumpForward(pos(12))
	require.True(t, ok)
	assert.Equal(t, pos(25), fwd)
}

func TestHistory_RecordNavigationIgnoresSelfMoves(t *testing.T) {
	h := New()
	h.RecordNavigation(pos(3), pos(3))

	_, ok := h.JumpBackward(pos(3))
	assert.False(t, ok)
}

func TestHistory_NavigationClearsForwardStack(t *testing.T) {
	h := New()
	h.RecordNavigation(pos(0), pos(12))

	back, ok := h.JumpBackward(pos(12))
	require.True(t, ok)
	require.Equal(t, pos(0), back)
	require.Equal(t, 1, h.ForwardLen())

	// A fresh jump invalidates the forward entry for page 12.
	h.RecordNavigation(pos(0), pos(40))
	_, ok = h.JumpForward(pos(40))
	assert.False(t, ok)
}

func TestHistory_SkipsEntriesEqualToCurrent(t *testing.T) {
	h := New()
	h.RecordNavigation(pos(0), pos(5))
	h.RecordNavigation(pos(5), pos(0))

	// Back stack top is 5; from position 5 the pop must skip it and
	// land on 0.
	target, ok := h.JumpBackward(pos(5))
	require.True(t, ok)
	assert.Equal(t, pos(0), target)
}

func TestHistory_DedupSkipsPushWhenTopEqual(t *testing.T) {
	h := New()
	h.RecordNavigation(pos(0), pos(10))
	h.RecordNavigation(pos(0), pos(20))

	assert.Equal(t, 1, h.BackLen())
}

func TestHistory_RecordCurrentDoesNotTouchStacks(t *testing.T) {
	h := New()
	h.RecordNavigation(pos(0), pos(10))
	h.RecordCurrent(pos(11))

	assert.Equal(t, 1, h.BackLen())
	assert.Equal(t, 0, h.ForwardLen())
}

func TestHistory_CapacityDropsOldest(t *testing.T) {
	h := New()
	for i := 0; i < Capacity+10; i++ {
		h.RecordNavigation(pos(i), pos(i+1))
	}

	require.Equal(t, Capacity, h.BackLen())

	// Walk all the way back; the earliest reachable position is the
	// one just past the dropped window.
	current := pos(Capacity + 10)
	var last document.Position
	for {
		target, ok := h.JumpBackward(current)
		if !ok {
			break
		}
		last = target
		current = target
	}
	assert.Equal(t, pos(10), last)
}

func TestHistory_PositionsDifferingOnlyByScale(t *testing.T) {
	h := New()
	a := document.Position{Page: 4, Scale: 1}
	b := document.Position{Page: 4, Scale: 2}
	h.RecordNavigation(a, b)

	target, ok := h.JumpBackward(b)
	require.True(t, ok)
	assert.Equal(t, a, target)
}
