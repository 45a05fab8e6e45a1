// Package geom provides normalized page geometry shared by rendering,
// search, link, and selection code. All coordinates are in [0,1]
// relative to page width and height.
package geom

// Epsilon is the tolerance used when comparing normalized coordinates
// and scale factors.
const Epsilon = 1e-9

// Rect is a rectangle in normalized page coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Clamped returns a copy with every coordinate forced into [0,1].
func (r Rect) Clamped() Rect {
	r.Left = clamp01(r.Left)
	r.Top = clamp01(r.Top)
	r.Right = clamp01(r.Right)
	r.Bottom = clamp01(r.Bottom)
	return r
}

// Valid reports whether the rectangle has positive area.
func (r Rect) Valid() bool {
	return r.Right > r.Left && r.Bottom > r.Top
}

// Contains reports whether the point (x, y) lies within the rectangle,
// edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() (x, y float64) {
	return (r.Left + r.Right) * 0.5, (r.Top + r.Bottom) * 0.5
}

// Offset is a pan position within a zoomed page, normalized to [0,1]
// on both axes.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Reset moves the offset back to the page origin.
func (o *Offset) Reset() {
	o.X = 0
	o.Y = 0
}

// Clamp forces both axes into [0,1].
func (o *Offset) Clamp() {
	o.X = clamp01(o.X)
	o.Y = clamp01(o.Y)
}

// Adjust applies a pan delta, clamping the result, and reports whether
// the offset actually moved.
func (o *Offset) Adjust(deltaX, deltaY float64) bool {
	changed := false
	if abs(deltaX) > Epsilon {
		next := clamp01(o.X + deltaX)
		if abs(next-o.X) > Epsilon {
			o.X = next
			changed = true
		}
	}
	if abs(deltaY) > Epsilon {
		next := clamp01(o.Y + deltaY)
		if abs(next-o.Y) > Epsilon {
			o.Y = next
			changed = true
		}
	}
	return changed
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
