package viewer

import (
	"math"
	"strings"
	"unicode"

	"github.com/colonyops/folio/internal/core/document"
	"github.com/colonyops/folio/internal/core/geom"
)

// Motion is a visual-cursor movement.
type Motion int

const (
	// MotionLeft steps one glyph left, crossing page boundaries.
	MotionLeft Motion = iota
	// MotionRight steps one glyph right, crossing page boundaries.
	MotionRight
	// MotionUp moves to the previous reconstructed line.
	MotionUp
	// MotionDown moves to the next reconstructed line.
	MotionDown
	// MotionWordForward skips to the start of the next word.
	MotionWordForward
	// MotionWordBackward skips to the start of the previous word.
	MotionWordBackward
	// MotionLineStart moves to the current line's first glyph.
	MotionLineStart
	// MotionLineEnd moves to the current line's last glyph boundary.
	MotionLineEnd
	// MotionDocumentStart moves to the document (or counted page) start.
	MotionDocumentStart
	// MotionDocumentEnd moves to the last page's final glyph.
	MotionDocumentEnd
	// MotionPageForward jumps count pages forward.
	MotionPageForward
	// MotionPageBackward jumps count pages backward.
	MotionPageBackward
)

// SelectionPoint addresses one glyph on one page. GlyphIndex may equal
// the page's glyph count: the valid one-past-end position.
type SelectionPoint struct {
	Page       int
	GlyphIndex int
}

func comparePoints(a, b SelectionPoint) int {
	switch {
	case a.Page != b.Page:
		if a.Page < b.Page {
			return -1
		}
		return 1
	case a.GlyphIndex != b.GlyphIndex:
		if a.GlyphIndex < b.GlyphIndex {
			return -1
		}
		return 1
	default:
		return 0
	}
}

type selectionState struct {
	anchor SelectionPoint
	head   SelectionPoint
}

// selectionSpan is a normalized selection: start <= end.
type selectionSpan struct {
	start SelectionPoint
	end   SelectionPoint
}

func (s *selectionState) normalized() selectionSpan {
	if comparePoints(s.anchor, s.head) > 0 {
		return selectionSpan{start: s.head, end: s.anchor}
	}
	return selectionSpan{start: s.anchor, end: s.head}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// EnsureVisualCursor makes sure a visual cursor exists, seeding it
// from the current page and viewport on first use. Reports whether the
// cursor changed.
func (v *Viewer) EnsureVisualCursor() (bool, error) {
	if v.visualCursor != nil {
		clamped, err := v.clampPoint(*v.visualCursor)
		if err != nil {
			return false, err
		}
		if clamped != *v.visualCursor {
			v.visualCursor = &clamped
			v.updateColumnHint(clamped)
			return true, nil
		}
		return false, nil
	}

	if v.info.PageCount == 0 {
		return false, nil
	}

	point, err := v.initialCursorPoint()
	if err != nil {
		return false, err
	}
	v.visualCursor = &point
	v.updateColumnHint(point)
	return true, nil
}

// StartSelection anchors a new selection at the visual cursor. No-op
// when a selection is already active.
func (v *Viewer) StartSelection() (bool, error) {
	if v.selection != nil {
		return false, nil
	}
	if _, err := v.EnsureVisualCursor(); err != nil {
		return false, err
	}
	if v.visualCursor == nil {
		return false, nil
	}
	point := *v.visualCursor
	v.selection = &selectionState{anchor: point, head: point}
	return true, nil
}

func (v *Viewer) initialCursorPoint() (SelectionPoint, error) {
	if v.visualCursor != nil {
		return v.clampPoint(*v.visualCursor)
	}

	page := v.State.CurrentPage
	if last := v.info.PageCount - 1; page > last {
		page = last
	}
	text, err := v.pageText(page)
	if err != nil {
		return SelectionPoint{}, err
	}

	glyphIndex := 0
	if text.GlyphCount() > 0 {
		glyphIndex = glyphNearPoint(text, v.State.Viewport.X, v.State.Viewport.Y)
	}
	return SelectionPoint{Page: page, GlyphIndex: glyphIndex}, nil
}

// glyphNearPoint finds the glyph containing the point, falling back to
// the glyph whose center is closest.
func glyphNearPoint(text *document.PageText, x, y float64) int {
	best := 0
	bestDist := math.Inf(1)
	for idx, glyph := range text.Glyphs {
		rect := glyph.Rect
		if !rect.Valid() {
			continue
		}
		if rect.Contains(x, y) {
			return idx
		}
		cx, cy := rect.Center()
		dx := cx - x
		dy := cy - y
		if dist := dx*dx + dy*dy; dist < bestDist {
			bestDist = dist
			best = idx
		}
	}
	return best
}

func (v *Viewer) updateColumnHint(point SelectionPoint) {
	if x, _, ok := v.cursorCenter(point); ok {
		v.columnHint = x
	}
}

func (v *Viewer) cursorCenter(point SelectionPoint) (x, y float64, ok bool) {
	text, err := v.pageText(point.Page)
	if err != nil {
		return 0, 0, false
	}
	count := text.GlyphCount()
	if count == 0 {
		return 0, 0, false
	}
	idx := point.GlyphIndex
	if idx > count-1 {
		idx = count - 1
	}
	rect := text.Glyphs[idx].Rect
	if !rect.Valid() {
		return 0, 0, false
	}
	cx, cy := rect.Center()
	return cx, cy, true
}

func (v *Viewer) clampPoint(point SelectionPoint) (SelectionPoint, error) {
	if v.info.PageCount == 0 {
		return SelectionPoint{}, nil
	}
	if point.Page >= v.info.PageCount {
		point.Page = v.info.PageCount - 1
	}
	if point.Page < 0 {
		point.Page = 0
	}
	text, err := v.pageText(point.Page)
	if err != nil {
		return SelectionPoint{}, err
	}
	if limit := text.GlyphCount(); point.GlyphIndex > limit {
		point.GlyphIndex = limit
	}
	if point.GlyphIndex < 0 {
		point.GlyphIndex = 0
	}
	return point, nil
}

// incrementPoint steps one glyph right, crossing into the next page's
// first glyph at the one-past-end boundary. Returns false at document
// end.
func (v *Viewer) incrementPoint(point *SelectionPoint) (bool, error) {
	text, err := v.pageText(point.Page)
	if err != nil {
		return false, err
	}
	if point.GlyphIndex < text.GlyphCount() {
		point.GlyphIndex++
		return true, nil
	}
	if point.Page+1 < v.info.PageCount {
		point.Page++
		point.GlyphIndex = 0
		return true, nil
	}
	return false, nil
}

// decrementPoint steps one glyph left, crossing into the previous
// page's one-past-end position. Returns false at document start.
func (v *Viewer) decrementPoint(point *SelectionPoint) (bool, error) {
	if point.GlyphIndex > 0 {
		point.GlyphIndex--
		return true, nil
	}
	if point.Page == 0 {
		return false, nil
	}
	point.Page--
	text, err := v.pageText(point.Page)
	if err != nil {
		return false, err
	}
	point.GlyphIndex = text.GlyphCount()
	return true, nil
}

func (v *Viewer) adjustPoint(point *SelectionPoint, delta int) (bool, error) {
	if delta == 0 {
		return false, nil
	}
	moved := false
	step := v.incrementPoint
	count := delta
	if delta < 0 {
		step = v.decrementPoint
		count = -delta
	}
	for i := 0; i < count; i++ {
		ok, err := step(point)
		if err != nil {
			return moved, err
		}
		if !ok {
			break
		}
		moved = true
	}
	return moved, nil
}

func (v *Viewer) movePages(point *SelectionPoint, delta int) (bool, error) {
	if delta == 0 || v.info.PageCount == 0 {
		return false, nil
	}
	target := point.Page + delta
	if last := v.info.PageCount - 1; target > last {
		target = last
	}
	if target < 0 {
		target = 0
	}
	if target == point.Page {
		return false, nil
	}
	point.Page = target
	text, err := v.pageText(point.Page)
	if err != nil {
		return false, err
	}
	if limit := text.GlyphCount(); point.GlyphIndex > limit {
		point.GlyphIndex = limit
	}
	return true, nil
}

// moveLines walks the line map up or down, crossing into adjacent
// pages at the first and last lines. Pages without extractable text
// consume one step each.
func (v *Viewer) moveLines(point *SelectionPoint, delta int) (bool, error) {
	if delta == 0 {
		return false, nil
	}
	remaining := delta
	moved := false

	for remaining != 0 {
		text, err := v.pageText(point.Page)
		if err != nil {
			return moved, err
		}

		if text.LineCount() == 0 {
			if remaining > 0 {
				if point.Page+1 >= v.info.PageCount {
					break
				}
				point.Page++
				point.GlyphIndex = 0
				remaining--
			} else {
				if point.Page == 0 {
					break
				}
				point.Page--
				point.GlyphIndex = 0
				remaining++
			}
			moved = true
			continue
		}

		idx := point.GlyphIndex
		if count := text.GlyphCount(); count > 0 && idx > count-1 {
			idx = count - 1
		}
		lineIdx, ok := text.LineForGlyph(idx)
		if !ok {
			lineIdx = text.LineCount() - 1
		}

		if remaining > 0 {
			if lineIdx+1 < text.LineCount() {
				line, _ := text.Line(lineIdx + 1)
				point.GlyphIndex = line.GlyphStart
				remaining--
				moved = true
			} else {
				if point.Page+1 >= v.info.PageCount {
					break
				}
				point.Page++
				point.GlyphIndex = 0
				remaining--
				moved = true
			}
		} else {
			if lineIdx > 0 {
				line, _ := text.Line(lineIdx - 1)
				point.GlyphIndex = line.GlyphStart
				remaining++
				moved = true
			} else {
				if point.Page == 0 {
					break
				}
				point.Page--
				prev, err := v.pageText(point.Page)
				if err != nil {
					return moved, err
				}
				if prev.LineCount() > 0 {
					line, _ := prev.Line(prev.LineCount() - 1)
					point.GlyphIndex = line.GlyphStart
				} else {
					point.GlyphIndex = 0
				}
				remaining++
				moved = true
			}
		}
	}
	return moved, nil
}

// moveWord repeats skip-separators-then-skip-word count times, in
// either direction. A word is a run of letters, digits, or
// underscores.
func (v *Viewer) moveWord(point *SelectionPoint, count int, forward bool) (bool, error) {
	moved := false
	if count < 1 {
		count = 1
	}
	for i := 0; i < count; i++ {
		skipped, err := v.skipWhile(point, func(r rune) bool { return !isWordRune(r) }, forward)
		if err != nil {
			return moved, err
		}
		moved = moved || skipped
		skipped, err = v.skipWhile(point, isWordRune, forward)
		if err != nil {
			return moved, err
		}
		moved = moved || skipped
	}
	return moved, nil
}

func (v *Viewer) moveToLineBoundary(point *SelectionPoint, toStart bool) (bool, error) {
	text, err := v.pageText(point.Page)
	if err != nil {
		return false, err
	}
	if text.LineCount() == 0 {
		return false, nil
	}

	idx := point.GlyphIndex
	if count := text.GlyphCount(); count > 0 && idx > count-1 {
		idx = count - 1
	}
	lineIdx, ok := text.LineForGlyph(idx)
	if !ok {
		lineIdx = text.LineCount() - 1
	}
	line, _ := text.Line(lineIdx)

	target := line.GlyphStart
	if !toStart {
		target = line.GlyphEnd
		if limit := text.GlyphCount(); target > limit {
			target = limit
		}
	}
	if point.GlyphIndex == target {
		return false, nil
	}
	point.GlyphIndex = target
	return true, nil
}

// skipWhile advances the point while the predicate holds for the glyph
// under (forward) or before (backward) it, crossing page boundaries.
func (v *Viewer) skipWhile(point *SelectionPoint, predicate func(rune) bool, forward bool) (bool, error) {
	changed := false
	for {
		text, err := v.pageText(point.Page)
		if err != nil {
			return changed, err
		}
		count := text.GlyphCount()

		if forward {
			if point.GlyphIndex >= count {
				ok, err := v.incrementPoint(point)
				if err != nil || !ok {
					return changed, err
				}
				changed = true
				continue
			}
			r, ok := text.GlyphRune(point.GlyphIndex)
			if !ok || !predicate(r) {
				return changed, nil
			}
			ok, err := v.incrementPoint(point)
			if err != nil || !ok {
				return changed, err
			}
			changed = true
		} else {
			if point.GlyphIndex == 0 {
				ok, err := v.decrementPoint(point)
				if err != nil || !ok {
					return changed, err
				}
				changed = true
				continue
			}
			r, ok := text.GlyphRune(point.GlyphIndex - 1)
			if !ok || !predicate(r) {
				return changed, nil
			}
			ok, err := v.decrementPoint(point)
			if err != nil || !ok {
				return changed, err
			}
			changed = true
		}
	}
}

// ClearSelection tears down the active selection, optionally
// remembering its normalized span for restoration, and parks the
// visual cursor at the former head.
func (v *Viewer) ClearSelection(remember bool) bool {
	if v.selection == nil {
		return false
	}
	if remember {
		span := v.selection.normalized()
		v.lastSelection = &span
	}
	head := v.selection.head
	v.selection = nil
	v.visualCursor = &head
	v.updateColumnHint(head)
	return true
}

// LeaveVisualMode clears both the selection and the visual cursor.
func (v *Viewer) LeaveVisualMode(remember bool) bool {
	changed := v.ClearSelection(remember)
	if v.visualCursor != nil {
		v.visualCursor = nil
		changed = true
	}
	return changed
}

// RestoreLastSelection re-activates the most recently remembered
// selection, clamped to the current document bounds.
func (v *Viewer) RestoreLastSelection() (bool, error) {
	if v.lastSelection == nil {
		return false, nil
	}
	start, err := v.clampPoint(v.lastSelection.start)
	if err != nil {
		return false, err
	}
	end, err := v.clampPoint(v.lastSelection.end)
	if err != nil {
		return false, err
	}
	v.selection = &selectionState{anchor: start, head: end}
	v.visualCursor = &end
	v.updateColumnHint(end)
	return true, nil
}

// SwapVisualCursor exchanges the selection's anchor and head.
func (v *Viewer) SwapVisualCursor() bool {
	if v.selection == nil {
		return false
	}
	v.selection.anchor, v.selection.head = v.selection.head, v.selection.anchor
	head := v.selection.head
	v.visualCursor = &head
	v.updateColumnHint(head)
	return true
}

// MoveVisualCursor applies a motion count times, updating the cursor,
// the selection head when a selection is active, and the current page
// when the cursor crossed pages.
func (v *Viewer) MoveVisualCursor(motion Motion, count int) (bool, error) {
	if v.info.PageCount == 0 {
		return false, nil
	}
	if _, err := v.EnsureVisualCursor(); err != nil {
		return false, err
	}
	if v.visualCursor == nil {
		return false, nil
	}

	cursor := *v.visualCursor
	steps := count
	if steps < 1 {
		steps = 1
	}

	var (
		changed bool
		err     error
	)
	switch motion {
	case MotionLeft:
		changed, err = v.adjustPoint(&cursor, -steps)
	case MotionRight:
		changed, err = v.adjustPoint(&cursor, steps)
	case MotionWordForward:
		changed, err = v.moveWord(&cursor, steps, true)
	case MotionWordBackward:
		changed, err = v.moveWord(&cursor, steps, false)
	case MotionLineStart:
		changed, err = v.moveToLineBoundary(&cursor, true)
	case MotionLineEnd:
		changed, err = v.moveToLineBoundary(&cursor, false)
	case MotionDocumentStart:
		// A count acts as a 1-based target page, vi-style NG.
		targetPage := 0
		if steps > 1 {
			targetPage = steps - 1
			if last := v.info.PageCount - 1; targetPage > last {
				targetPage = last
			}
		}
		if cursor.Page != targetPage || cursor.GlyphIndex != 0 {
			cursor.Page = targetPage
			cursor.GlyphIndex = 0
			changed = true
		}
	case MotionDocumentEnd:
		targetPage := v.info.PageCount - 1
		pageChanged := cursor.Page != targetPage
		cursor.Page = targetPage
		var text *document.PageText
		text, err = v.pageText(cursor.Page)
		if err == nil {
			target := text.GlyphCount()
			if pageChanged || cursor.GlyphIndex != target {
				cursor.GlyphIndex = target
				changed = true
			}
		}
	case MotionPageForward:
		changed, err = v.movePages(&cursor, steps)
	case MotionPageBackward:
		changed, err = v.movePages(&cursor, -steps)
	case MotionDown:
		changed, err = v.moveLines(&cursor, steps)
	case MotionUp:
		changed, err = v.moveLines(&cursor, -steps)
	}
	if err != nil {
		return false, err
	}

	if changed {
		v.visualCursor = &cursor
		v.updateColumnHint(cursor)
		if v.State.CurrentPage != cursor.Page {
			v.State.CurrentPage = cursor.Page
			v.State.Viewport.Reset()
			v.syncJumpPosition()
		}
		if v.selection != nil {
			v.selection.head = cursor
		}
	}
	return changed, nil
}

// SelectionText extracts the selected text, walking pages in order and
// joining per-page fragments with a newline. Anchor/head order does
// not matter.
func (v *Viewer) SelectionText() (string, bool) {
	if v.selection == nil {
		return "", false
	}
	text, err := v.extractSelectionText(v.selection.normalized())
	if err != nil {
		return "", false
	}
	return text, true
}

func (v *Viewer) extractSelectionText(span selectionSpan) (string, error) {
	var b strings.Builder
	for page := span.start.Page; page <= span.end.Page; page++ {
		text, err := v.pageText(page)
		if err != nil {
			return "", err
		}
		count := text.GlyphCount()

		startIdx := 0
		if page == span.start.Page {
			startIdx = span.start.GlyphIndex
			if startIdx > count {
				startIdx = count
			}
		}
		endIdx := count
		if page == span.end.Page {
			endIdx = span.end.GlyphIndex
			if endIdx > count {
				endIdx = count
			}
		}

		if startIdx < endIdx {
			startOffset := text.BoundaryOffset(startIdx)
			endOffset := text.BoundaryOffset(endIdx)
			if endOffset > startOffset && endOffset <= len(text.Text) {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(text.Text[startOffset:endOffset])
			}
		}
	}
	return b.String(), nil
}

// SelectionHighlights returns the selected glyph rectangles on the
// current page.
func (v *Viewer) SelectionHighlights() (Highlights, bool) {
	if v.selection == nil {
		return Highlights{}, false
	}
	return v.buildSelectionHighlights(v.selection.normalized(), v.State.CurrentPage)
}

func (v *Viewer) buildSelectionHighlights(span selectionSpan, pageIndex int) (Highlights, bool) {
	if pageIndex < span.start.Page || pageIndex > span.end.Page {
		return Highlights{}, false
	}
	text, err := v.pageText(pageIndex)
	if err != nil {
		return Highlights{}, false
	}
	count := text.GlyphCount()

	startIdx := 0
	if pageIndex == span.start.Page {
		startIdx = span.start.GlyphIndex
		if startIdx > count {
			startIdx = count
		}
	}
	endIdx := count
	if pageIndex == span.end.Page {
		endIdx = span.end.GlyphIndex
		if endIdx > count {
			endIdx = count
		}
	}
	if startIdx >= endIdx {
		return Highlights{}, false
	}

	var hl Highlights
	for _, glyph := range text.Glyphs[startIdx:endIdx] {
		if glyph.Rect.Valid() {
			hl.Current = append(hl.Current, glyph.Rect)
		}
	}
	if hl.Empty() {
		return Highlights{}, false
	}
	return hl, true
}

// VisualCursorHighlight returns the rectangle of the glyph under the
// visual cursor when no selection is active and the cursor is on the
// current page.
func (v *Viewer) VisualCursorHighlight() (geom.Rect, bool) {
	if v.selection != nil || v.visualCursor == nil {
		return geom.Rect{}, false
	}
	point := *v.visualCursor
	if point.Page != v.State.CurrentPage {
		return geom.Rect{}, false
	}
	text, err := v.pageText(point.Page)
	if err != nil {
		return geom.Rect{}, false
	}
	count := text.GlyphCount()
	if count == 0 {
		return geom.Rect{}, false
	}
	idx := point.GlyphIndex
	if idx > count-1 {
		idx = count - 1
	}
	rect := text.Glyphs[idx].Rect
	if !rect.Valid() {
		return geom.Rect{}, false
	}
	return rect, true
}
