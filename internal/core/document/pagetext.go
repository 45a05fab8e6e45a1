package document

import (
	"unicode/utf8"

	"github.com/colonyops/folio/internal/core/geom"
)

// Line-map reconstruction defaults. Glyph centers within the threshold
// of the tracked line center continue the line; the tracked center is
// smoothed with an exponential moving average as glyphs are appended.
const (
	DefaultLineThreshold = 0.015
	DefaultLineSmoothing = 0.2
)

// Glyph is one extracted character: a byte range into the page text
// plus its normalized bounding rectangle.
type Glyph struct {
	Start int
	End   int
	Rect  geom.Rect
}

// Line is a contiguous glyph-index range reconstructed as one visual
// line. GlyphEnd is exclusive.
type Line struct {
	GlyphStart int
	GlyphEnd   int
	CenterY    float64
}

// PageText is the extracted text of one page together with its glyph
// geometry, O(1) boundary-offset lookups, and the reconstructed line
// map. Built once per page and cached by the viewer.
type PageText struct {
	Text   string
	Glyphs []Glyph

	boundaryOffsets []int
	lines           []Line
	glyphLine       []int
}

// NewPageText builds a PageText with the default line-map tuning.
func NewPageText(text string, glyphs []Glyph) *PageText {
	return NewPageTextTuned(text, glyphs, DefaultLineThreshold, DefaultLineSmoothing)
}

// NewPageTextTuned builds a PageText with explicit line-map tuning.
// Non-positive values fall back to the defaults.
func NewPageTextTuned(text string, glyphs []Glyph, threshold, smoothing float64) *PageText {
	if threshold <= 0 {
		threshold = DefaultLineThreshold
	}
	if smoothing <= 0 || smoothing > 1 {
		smoothing = DefaultLineSmoothing
	}

	boundaries := make([]int, 0, len(glyphs)+1)
	boundaries = append(boundaries, 0)
	for _, glyph := range glyphs {
		end := glyph.End
		if end > len(text) {
			end = len(text)
		}
		boundaries = append(boundaries, end)
	}

	lines, glyphLine := buildLineMap(glyphs, threshold, smoothing)

	return &PageText{
		Text:            text,
		Glyphs:          glyphs,
		boundaryOffsets: boundaries,
		lines:           lines,
		glyphLine:       glyphLine,
	}
}

// GlyphCount returns the number of glyphs on the page.
func (p *PageText) GlyphCount() int {
	return len(p.Glyphs)
}

// BoundaryOffset maps a glyph boundary (0..GlyphCount) to a byte
// offset into Text. Out-of-range boundaries clamp to the text length.
func (p *PageText) BoundaryOffset(boundary int) int {
	if boundary < 0 {
		return 0
	}
	if boundary >= len(p.boundaryOffsets) {
		return len(p.Text)
	}
	return p.boundaryOffsets[boundary]
}

// LineCount returns the number of reconstructed lines.
func (p *PageText) LineCount() int {
	return len(p.lines)
}

// Line returns the reconstructed line at index.
func (p *PageText) Line(index int) (Line, bool) {
	if index < 0 || index >= len(p.lines) {
		return Line{}, false
	}
	return p.lines[index], true
}

// LineForGlyph returns the index of the line containing the glyph.
func (p *PageText) LineForGlyph(glyphIndex int) (int, bool) {
	if glyphIndex < 0 || glyphIndex >= len(p.glyphLine) {
		return 0, false
	}
	return p.glyphLine[glyphIndex], true
}

// GlyphRune returns the first rune of the glyph's text range.
func (p *PageText) GlyphRune(glyphIndex int) (rune, bool) {
	if glyphIndex < 0 || glyphIndex >= len(p.Glyphs) {
		return 0, false
	}
	glyph := p.Glyphs[glyphIndex]
	if glyph.Start < 0 || glyph.Start >= len(p.Text) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(p.Text[glyph.Start:])
	if r == utf8.RuneError {
		return 0, false
	}
	return r, true
}

// buildLineMap groups glyphs into visual lines by vertical proximity.
// The glyph order is whatever the backend emitted; this is a
// best-effort heuristic, not a typesetting model.
func buildLineMap(glyphs []Glyph, threshold, smoothing float64) ([]Line, []int) {
	if len(glyphs) == 0 {
		return nil, nil
	}

	var lines []Line
	glyphLine := make([]int, 0, len(glyphs))
	haveLast := false
	lastCenter := 0.0

	for idx, glyph := range glyphs {
		_, center := glyph.Rect.Center()
		if !haveLast || absDiff(lastCenter, center) > threshold {
			lines = append(lines, Line{GlyphStart: idx, GlyphEnd: idx, CenterY: center})
		}

		line := &lines[len(lines)-1]
		line.GlyphEnd = idx + 1
		line.CenterY = line.CenterY*(1-smoothing) + center*smoothing
		glyphLine = append(glyphLine, len(lines)-1)

		lastCenter = center
		haveLast = true
	}

	return lines, glyphLine
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
