package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/folio/internal/core/geom"
)

// glyphRow lays out the runes of s as uniform glyphs on one visual row.
func glyphRow(text string, s string, offset int, centerY float64) []Glyph {
	glyphs := make([]Glyph, 0, len(s))
	pos := offset
	for i, r := range s {
		_ = i
		width := len(string(r))
		glyphs = append(glyphs, Glyph{
			Start: pos,
			End:   pos + width,
			Rect: geom.Rect{
				Left:   float64(len(glyphs)) * 0.01,
				Top:    centerY - 0.005,
				Right:  float64(len(glyphs))*0.01 + 0.01,
				Bottom: centerY + 0.005,
			},
		})
		pos += width
	}
	return glyphs
}

func TestPageText_LineMapGroupsByVerticalProximity(t *testing.T) {
	text := "hello world"
	glyphs := append(
		glyphRow(text, "hello", 0, 0.10),
		glyphRow(text, " world", 5, 0.20)...,
	)

	pt := NewPageText(text, glyphs)

	require.Equal(t, 2, pt.LineCount())

	first, ok := pt.Line(0)
	require.True(t, ok)
	assert.Equal(t, 0, first.GlyphStart)
	assert.Equal(t, 5, first.GlyphEnd)

	second, ok := pt.Line(1)
	require.True(t, ok)
	assert.Equal(t, 5, second.GlyphStart)
	assert.Equal(t, 11, second.GlyphEnd)

	for i := 0; i < 5; i++ {
		line, ok := pt.LineForGlyph(i)
		require.True(t, ok)
		assert.Equal(t, 0, line)
	}
	line, ok := pt.LineForGlyph(7)
	require.True(t, ok)
	assert.Equal(t, 1, line)
}

func TestPageText_LineMapContinuesWithinThreshold(t *testing.T) {
	// Centers drift by 0.01 per glyph, inside the 0.015 threshold, so
	// everything stays on one line even though the total drift is large.
	text := "abcd"
	glyphs := make([]Glyph, 0, 4)
	for i := 0; i < 4; i++ {
		center := 0.1 + float64(i)*0.01
		glyphs = append(glyphs, Glyph{
			Start: i,
			End:   i + 1,
			Rect:  geom.Rect{Left: 0, Top: center - 0.005, Right: 0.01, Bottom: center + 0.005},
		})
	}

	pt := NewPageText(text, glyphs)
	assert.Equal(t, 1, pt.LineCount())
}

func TestPageText_BoundaryOffsets(t *testing.T) {
	text := "héllo"
	glyphs := glyphRow(text, text, 0, 0.1)

	pt := NewPageText(text, glyphs)

	assert.Equal(t, 0, pt.BoundaryOffset(0))
	assert.Equal(t, 1, pt.BoundaryOffset(1))
	// é is two bytes
	assert.Equal(t, 3, pt.BoundaryOffset(2))
	assert.Equal(t, len(text), pt.BoundaryOffset(pt.GlyphCount()))
	assert.Equal(t, len(text), pt.BoundaryOffset(99), "past-the-end boundaries clamp")

	assert.Equal(t, "hél", pt.Text[pt.BoundaryOffset(0):pt.BoundaryOffset(3)])
}

func TestPageText_GlyphRune(t *testing.T) {
	text := "héllo"
	pt := NewPageText(text, glyphRow(text, text, 0, 0.1))

	r, ok := pt.GlyphRune(1)
	require.True(t, ok)
	assert.Equal(t, 'é', r)

	_, ok = pt.GlyphRune(99)
	assert.False(t, ok)
}

func TestPageText_Empty(t *testing.T) {
	pt := NewPageText("", nil)

	assert.Equal(t, 0, pt.GlyphCount())
	assert.Equal(t, 0, pt.LineCount())
	_, ok := pt.LineForGlyph(0)
	assert.False(t, ok)
}
