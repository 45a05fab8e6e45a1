package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threePageBackend() *fakeBackend {
	return newFakeBackend(
		textPage("alpha beta"),
		textPage("gamma"),
		textPage("delta end"),
	)
}

func TestSelection_EnsureVisualCursorSeedsFromViewport(t *testing.T) {
	v := newTestViewer(t, threePageBackend())

	changed, err := v.EnsureVisualCursor()
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, v.visualCursor)
	assert.Equal(t, SelectionPoint{Page: 0, GlyphIndex: 0}, *v.visualCursor)

	// Already seeded and in bounds: no change.
	changed, err = v.EnsureVisualCursor()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSelection_TextAcrossPagesJoinsWithNewlines(t *testing.T) {
	v := newTestViewer(t, threePageBackend())

	_, err := v.StartSelection()
	require.NoError(t, err)

	// Head to the end of the document.
	changed, err := v.MoveVisualCursor(MotionDocumentEnd, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, v.CurrentPage())

	text, ok := v.SelectionText()
	require.True(t, ok)
	assert.Equal(t, "alpha beta\ngamma\ndelta end", text)
}

func TestSelection_SwapKeepsNormalizedSpan(t *testing.T) {
	v := newTestViewer(t, threePageBackend())

	_, err := v.StartSelection()
	require.NoError(t, err)
	_, err = v.MoveVisualCursor(MotionDocumentEnd, 1)
	require.NoError(t, err)

	before, ok := v.SelectionText()
	require.True(t, ok)

	require.True(t, v.SwapVisualCursor())
	assert.Equal(t, SelectionPoint{Page: 0, GlyphIndex: 0}, *v.visualCursor)

	after, ok := v.SelectionText()
	require.True(t, ok)
	assert.Equal(t, before, after, "anchor/head order must not matter")
}

func TestSelection_CharacterMotionCrossesPages(t *testing.T) {
	v := newTestViewer(t, threePageBackend())

	_, err := v.EnsureVisualCursor()
	require.NoError(t, err)

	// Past "alpha beta" (10 glyphs) and its end boundary onto page 1.
	changed, err := v.MoveVisualCursor(MotionRight, 11)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, SelectionPoint{Page: 1, GlyphIndex: 0}, *v.visualCursor)
	assert.Equal(t, 1, v.CurrentPage(), "cursor crossing pages moves the view")

	changed, err = v.MoveVisualCursor(MotionLeft, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, SelectionPoint{Page: 0, GlyphIndex: 10}, *v.visualCursor)
}

func TestSelection_CharacterMotionStopsAtDocumentEdges(t *testing.T) {
	v := newTestViewer(t, threePageBackend())

	_, err := v.EnsureVisualCursor()
	require.NoError(t, err)

	changed, err := v.MoveVisualCursor(MotionLeft, 5)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = v.MoveVisualCursor(MotionDocumentEnd, 1)
	require.NoError(t, err)
	changed, err = v.MoveVisualCursor(MotionRight, 3)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSelection_WordMotion(t *testing.T) {
	v := newTestViewer(t, newFakeBackend(textPage("foo bar_baz qux")))

	_, err := v.EnsureVisualCursor()
	require.NoError(t, err)

	// Forward skips separators, then the word under the cursor, landing
	// on the separator after "foo".
	changed, err := v.MoveVisualCursor(MotionWordForward, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 3, v.visualCursor.GlyphIndex)

	// "bar_baz" is one word; underscores are word characters.
	changed, err = v.MoveVisualCursor(MotionWordForward, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 11, v.visualCursor.GlyphIndex)

	// Backward lands on the start of the word just crossed.
	changed, err = v.MoveVisualCursor(MotionWordBackward, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 4, v.visualCursor.GlyphIndex)
}

func TestSelection_LineMotionFollowsLineMap(t *testing.T) {
	v := newTestViewer(t, newFakeBackend(textPage("first line", "second ln", "third row")))

	_, err := v.EnsureVisualCursor()
	require.NoError(t, err)

	changed, err := v.MoveVisualCursor(MotionDown, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 10, v.visualCursor.GlyphIndex, "down lands on the next line's first glyph")

	changed, err = v.MoveVisualCursor(MotionDown, 1)
	require.NoError(t, err)
	assert.Equal(t, 19, v.visualCursor.GlyphIndex)

	changed, err = v.MoveVisualCursor(MotionUp, 2)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, v.visualCursor.GlyphIndex)
}

func TestSelection_LineMotionCrossesPages(t *testing.T) {
	v := newTestViewer(t, newFakeBackend(
		textPage("one", "two"),
		textPage("three"),
	))

	_, err := v.EnsureVisualCursor()
	require.NoError(t, err)

	_, err = v.MoveVisualCursor(MotionDown, 1)
	require.NoError(t, err)
	assert.Equal(t, SelectionPoint{Page: 0, GlyphIndex: 3}, *v.visualCursor)

	// Down from the last line of page 0 enters page 1.
	_, err = v.MoveVisualCursor(MotionDown, 1)
	require.NoError(t, err)
	assert.Equal(t, SelectionPoint{Page: 1, GlyphIndex: 0}, *v.visualCursor)

	// Up from the first line of page 1 lands on page 0's last line.
	_, err = v.MoveVisualCursor(MotionUp, 1)
	require.NoError(t, err)
	assert.Equal(t, SelectionPoint{Page: 0, GlyphIndex: 3}, *v.visualCursor)
}

func TestSelection_LineBoundaries(t *testing.T) {
	v := newTestViewer(t, newFakeBackend(textPage("hello world", "next")))

	_, err := v.EnsureVisualCursor()
	require.NoError(t, err)
	_, err = v.MoveVisualCursor(MotionRight, 3)
	require.NoError(t, err)

	changed, err := v.MoveVisualCursor(MotionLineEnd, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 11, v.visualCursor.GlyphIndex)

	changed, err = v.MoveVisualCursor(MotionLineStart, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, v.visualCursor.GlyphIndex)
}

func TestSelection_DocumentStartHonorsCountAsTargetPage(t *testing.T) {
	v := newTestViewer(t, newFakeBackend(blankPages(10)...))

	_, err := v.EnsureVisualCursor()
	require.NoError(t, err)

	changed, err := v.MoveVisualCursor(MotionDocumentStart, 7)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, SelectionPoint{Page: 6, GlyphIndex: 0}, *v.visualCursor)
	assert.Equal(t, 6, v.CurrentPage())

	changed, err = v.MoveVisualCursor(MotionDocumentStart, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, SelectionPoint{Page: 0, GlyphIndex: 0}, *v.visualCursor)
}

func TestSelection_PageMotionKeepsGlyphClamped(t *testing.T) {
	v := newTestViewer(t, newFakeBackend(
		textPage("a much longer first page"),
		textPage("tiny"),
	))

	_, err := v.EnsureVisualCursor()
	require.NoError(t, err)
	_, err = v.MoveVisualCursor(MotionRight, 20)
	require.NoError(t, err)

	changed, err := v.MoveVisualCursor(MotionPageForward, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, SelectionPoint{Page: 1, GlyphIndex: 4}, *v.visualCursor)

	changed, err = v.MoveVisualCursor(MotionPageForward, 5)
	require.NoError(t, err)
	assert.False(t, changed, "already on the last page")
}

func TestSelection_ClearRememberAndRestore(t *testing.T) {
	v := newTestViewer(t, threePageBackend())

	_, err := v.StartSelection()
	require.NoError(t, err)
	_, err = v.MoveVisualCursor(MotionRight, 4)
	require.NoError(t, err)

	require.True(t, v.ClearSelection(true))
	_, ok := v.SelectionText()
	assert.False(t, ok)
	assert.NotNil(t, v.visualCursor, "cursor survives clearing the selection")

	restored, err := v.RestoreLastSelection()
	require.NoError(t, err)
	require.True(t, restored)

	text, ok := v.SelectionText()
	require.True(t, ok)
	assert.Equal(t, "alph", text)
}

func TestSelection_LeaveVisualModeDropsCursor(t *testing.T) {
	v := newTestViewer(t, threePageBackend())

	_, err := v.StartSelection()
	require.NoError(t, err)
	require.True(t, v.LeaveVisualMode(false))
	assert.Nil(t, v.visualCursor)

	restored, err := v.RestoreLastSelection()
	require.NoError(t, err)
	assert.False(t, restored, "nothing remembered without the flag")
}

func TestSelection_HighlightsOnlyOnCurrentPage(t *testing.T) {
	v := newTestViewer(t, threePageBackend())

	_, err := v.StartSelection()
	require.NoError(t, err)
	_, err = v.MoveVisualCursor(MotionDocumentEnd, 1)
	require.NoError(t, err)

	hl, ok := v.SelectionHighlights()
	require.True(t, ok)
	assert.Len(t, hl.Current, 9, "all of the last page's glyphs are selected")
	assert.Empty(t, hl.Others)
}

func TestSelection_VisualCursorHighlight(t *testing.T) {
	v := newTestViewer(t, threePageBackend())

	_, err := v.EnsureVisualCursor()
	require.NoError(t, err)

	rect, ok := v.VisualCursorHighlight()
	require.True(t, ok)
	assert.True(t, rect.Valid())

	// An active selection suppresses the bare cursor highlight.
	_, err = v.StartSelection()
	require.NoError(t, err)
	_, ok = v.VisualCursorHighlight()
	assert.False(t, ok)
}
