// Package history implements browser-style back/forward jump history
// over document positions. Incidental moves (single page steps, zoom,
// pan) are recorded as the current position only; discontinuous jumps
// (search hits, goto, link activation) push history entries.
package history

import "github.com/colonyops/folio/internal/core/document"

// Capacity bounds each stack; the oldest entries are dropped on
// overflow.
const Capacity = 128

// History holds the two bounded jump stacks plus the last known
// position.
type History struct {
	back    []document.Position
	forward []document.Position

	lastKnown    document.Position
	hasLastKnown bool
}

// New returns an empty history.
func New() *History {
	return &History{}
}

// RecordInitial seeds the last known position without creating a jump.
func (h *History) RecordInitial(pos document.Position) {
	h.lastKnown = pos
	h.hasLastKnown = true
}

// RecordNavigation records a history-worthy jump from one position to
// another. Equal positions are ignored. Any forward history is
// invalidated.
func (h *History) RecordNavigation(from, to document.Position) {
	if from == to {
		return
	}
	h.back = pushBounded(h.back, from)
	h.forward = h.forward[:0]
	h.lastKnown = to
	h.hasLastKnown = true
}

// RecordCurrent updates the last known position without touching
// either stack. Used for in-place edits such as zoom and pan.
func (h *History) RecordCurrent(pos document.Position) {
	h.lastKnown = pos
	h.hasLastKnown = true
}

// JumpBackward pops the most recent back entry that differs from
// current, pushing current onto the forward stack. Returns false when
// the back stack has no such entry.
func (h *History) JumpBackward(current document.Position) (document.Position, bool) {
	for len(h.back) > 0 {
		target := h.back[len(h.back)-1]
		h.back = h.back[:len(h.back)-1]
		if target == current {
			continue
		}
		h.forward = pushBounded(h.forward, current)
		h.lastKnown = target
		h.hasLastKnown = true
		return target, true
	}
	return document.Position{}, false
}

// JumpForward mirrors JumpBackward over the forward stack.
func (h *History) JumpForward(current document.Position) (document.Position, bool) {
	for len(h.forward) > 0 {
		target := h.forward[len(h.forward)-1]
		h.forward = h.forward[:len(h.forward)-1]
		if target == current {
			continue
		}
		h.back = pushBounded(h.back, current)
		h.lastKnown = target
		h.hasLastKnown = true
		return target, true
	}
	return document.Position{}, false
}

// BackLen returns the back stack depth.
func (h *History) BackLen() int { return len(h.back) }

// ForwardLen returns the forward stack depth.
func (h *History) ForwardLen() int { return len(h.forward) }

// pushBounded appends pos, skipping the push when it equals the top,
// and evicts from the front past Capacity.
func pushBounded(stack []document.Position, pos document.Position) []document.Position {
	if len(stack) > 0 && stack[len(stack)-1] == pos {
		return stack
	}
	stack = append(stack, pos)
	if len(stack) > Capacity {
		overflow := len(stack) - Capacity
		stack = append(stack[:0], stack[overflow:]...)
	}
	return stack
}
