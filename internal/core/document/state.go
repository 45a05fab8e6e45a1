package document

import "github.com/colonyops/folio/internal/core/geom"

// Scale bounds applied to every zoom mutation.
const (
	MinScale = 0.25
	MaxScale = 4.0
)

// Position is a restorable place in a document: the page, the zoom
// factor, and the pan offset. Compared by value.
type Position struct {
	Page     int
	Scale    float64
	Viewport geom.Offset
}

// PersistedState is the per-document state written to the StateStore
// at close and shutdown. Missing optional fields default via
// DefaultState when decoding older files.
type PersistedState struct {
	CurrentPage int            `json:"current_page"`
	Scale       float64        `json:"scale"`
	DarkMode    bool           `json:"dark_mode"`
	Marks       map[string]int `json:"marks"`
	NamedMarks  map[string]int `json:"named_marks,omitempty"`
	Viewport    geom.Offset    `json:"viewport"`
}

// DefaultState returns the state used for a document opened for the
// first time.
func DefaultState() PersistedState {
	return PersistedState{
		CurrentPage: 0,
		Scale:       1.0,
		Marks:       map[string]int{},
		NamedMarks:  map[string]int{},
	}
}

// Clone returns a deep copy; the mark maps are not shared.
func (s PersistedState) Clone() PersistedState {
	copied := s
	copied.Marks = make(map[string]int, len(s.Marks))
	for key, page := range s.Marks {
		copied.Marks[key] = page
	}
	copied.NamedMarks = make(map[string]int, len(s.NamedMarks))
	for name, page := range s.NamedMarks {
		copied.NamedMarks[name] = page
	}
	return copied
}

// Normalize repairs a state after decoding or reload: nil maps are
// allocated, the page and scale are clamped, marks pointing past the
// page count are dropped, and the viewport obeys the scale invariant
// (reset at scale <= 1, clamped otherwise).
func (s *PersistedState) Normalize(pageCount int) {
	if s.Marks == nil {
		s.Marks = map[string]int{}
	}
	if s.NamedMarks == nil {
		s.NamedMarks = map[string]int{}
	}

	if pageCount <= 0 {
		s.CurrentPage = 0
	} else if s.CurrentPage >= pageCount {
		s.CurrentPage = pageCount - 1
	}
	if s.CurrentPage < 0 {
		s.CurrentPage = 0
	}

	if s.Scale == 0 {
		s.Scale = 1.0
	}
	s.Scale = ClampScale(s.Scale)

	for key, page := range s.Marks {
		if page >= pageCount {
			delete(s.Marks, key)
		}
	}
	for name, page := range s.NamedMarks {
		if page >= pageCount {
			delete(s.NamedMarks, name)
		}
	}

	if s.Scale <= 1.0+geom.Epsilon {
		s.Viewport.Reset()
	} else {
		s.Viewport.Clamp()
	}
}

// ClampScale forces a zoom factor into [MinScale, MaxScale].
func ClampScale(scale float64) float64 {
	switch {
	case scale < MinScale:
		return MinScale
	case scale > MaxScale:
		return MaxScale
	default:
		return scale
	}
}
