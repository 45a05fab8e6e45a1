package viewer

import (
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/colonyops/folio/internal/core/document"
	"github.com/colonyops/folio/internal/core/geom"
)

// SearchMatch is one hit of the active query: its page, plus highlight
// rectangles when the backend produced geometry. Rects is empty for
// hits found by the substring fallback.
type SearchMatch struct {
	Page  int
	Rects []geom.Rect
}

// SearchSummary describes the active search for status display.
type SearchSummary struct {
	Query string
	Total int
	// CurrentIndex is -1 when no match is selected.
	CurrentIndex int
}

type searchState struct {
	query   string
	matches []SearchMatch
	// current is -1 when no match is selected.
	current int
}

type direction int

const (
	stepForward direction = iota
	stepBackward
)

// SearchContext carries everything needed to build matches for a
// document without holding the viewer itself, sharing its page-text
// cache. Useful when match building is driven from outside the
// command loop.
type SearchContext struct {
	info    document.Info
	backend document.Backend
	cache   *pageTextCache
	log     zerolog.Logger
}

// SearchContext returns a match-building context for this document.
func (v *Viewer) SearchContext() SearchContext {
	return SearchContext{
		info:    v.info,
		backend: v.backend,
		cache:   v.textCache,
		log:     v.log,
	}
}

// BuildMatches scans every page for the query, in page order. Pages
// with structured backend hits contribute those as-is; other pages
// fall back to a case-insensitive substring scan of the extracted
// text. Per-page failures are logged and skipped so one bad page
// cannot blank the rest of the document.
func (sc SearchContext) BuildMatches(query string) ([]SearchMatch, error) {
	if query == "" {
		return nil, nil
	}

	queryFolded := foldForSearch(query)
	step := len(queryFolded)
	if step < 1 {
		step = 1
	}

	var matches []SearchMatch
	for page := 0; page < sc.info.PageCount; page++ {
		rectSets, err := sc.backend.SearchPage(page, query)
		if err != nil {
			sc.log.Warn().Err(err).Int("page", page).Str("path", sc.info.Path).
				Msg("backend search failed; falling back to text search")
			rectSets = nil
		}

		if len(rectSets) > 0 {
			for _, rects := range rectSets {
				valid := make([]geom.Rect, 0, len(rects))
				for _, rect := range rects {
					clamped := rect.Clamped()
					if clamped.Valid() {
						valid = append(valid, clamped)
					}
				}
				matches = append(matches, SearchMatch{Page: page, Rects: valid})
			}
			continue
		}

		text, err := sc.cache.load(sc.info, sc.backend, page)
		if err != nil {
			sc.log.Warn().Err(err).Int("page", page).Str("path", sc.info.Path).
				Msg("failed to extract text for search")
			continue
		}
		if text.Text == "" {
			continue
		}

		folded := foldForSearch(text.Text)
		offset := 0
		for offset < len(folded) {
			pos := strings.Index(folded[offset:], queryFolded)
			if pos < 0 {
				break
			}
			matches = append(matches, SearchMatch{Page: page})
			next := offset + pos + step
			if next <= offset {
				break
			}
			offset = next
		}
	}

	return matches, nil
}

// foldForSearch normalizes text for the substring fallback so composed
// and decomposed forms of the same characters compare equal.
func foldForSearch(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// PerformSearch builds and applies matches for a query. An empty or
// whitespace query clears the active search.
func (v *Viewer) PerformSearch(query string) (bool, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		v.search = nil
		v.syncJumpPosition()
		return false, nil
	}

	matches, err := v.SearchContext().BuildMatches(trimmed)
	if err != nil {
		return false, err
	}
	return v.ApplySearchResults(trimmed, matches, v.State.CurrentPage), nil
}

// ApplySearchResults installs a prebuilt match list. The initial
// current match is the first at or after startPage, wrapping to the
// first match when none lies ahead. Returns whether the page changed.
func (v *Viewer) ApplySearchResults(query string, matches []SearchMatch, startPage int) bool {
	if query == "" {
		v.search = nil
		v.syncJumpPosition()
		return false
	}

	if last := v.info.PageCount - 1; startPage > last {
		startPage = last
	}

	current := -1
	if len(matches) > 0 {
		current = 0
		for idx, m := range matches {
			if m.Page >= startPage {
				current = idx
				break
			}
		}
	}

	v.search = &searchState{
		query:   query,
		matches: matches,
		current: current,
	}

	if current < 0 {
		v.syncJumpPosition()
		return false
	}
	return v.applySearchIndex(current)
}

// NextSearchMatch advances count matches forward with wraparound.
// The second return is false when no search is active.
func (v *Viewer) NextSearchMatch(count int) (changed, active bool) {
	return v.advanceSearch(stepForward, count)
}

// PreviousSearchMatch advances count matches backward with wraparound.
func (v *Viewer) PreviousSearchMatch(count int) (changed, active bool) {
	return v.advanceSearch(stepBackward, count)
}

func (v *Viewer) advanceSearch(dir direction, count int) (changed, active bool) {
	if v.search == nil {
		return false, false
	}
	if count == 0 || len(v.search.matches) == 0 {
		return false, true
	}

	total := len(v.search.matches)
	current := v.search.current
	if current < 0 {
		current = 0
	}

	steps := count % total
	if steps == 0 {
		return v.applySearchIndex(current), true
	}

	var target int
	switch dir {
	case stepForward:
		target = (current + steps) % total
	case stepBackward:
		target = (current + total - steps) % total
	}
	return v.applySearchIndex(target), true
}

func (v *Viewer) applySearchIndex(index int) bool {
	state := v.search
	if state == nil {
		return false
	}
	if len(state.matches) == 0 || index < 0 || index >= len(state.matches) {
		state.current = -1
		return false
	}

	state.current = index
	return v.gotoPage(state.matches[index].Page)
}

// SearchSummary returns the active search's status, if any.
func (v *Viewer) SearchSummary() (SearchSummary, bool) {
	if v.search == nil {
		return SearchSummary{}, false
	}
	return SearchSummary{
		Query:        v.search.query,
		Total:        len(v.search.matches),
		CurrentIndex: v.search.current,
	}, true
}

// SearchHighlights partitions the current page's match rectangles into
// the active match versus the others.
func (v *Viewer) SearchHighlights() (Highlights, bool) {
	if v.search == nil {
		return Highlights{}, false
	}

	var hl Highlights
	for idx, m := range v.search.matches {
		if m.Page != v.State.CurrentPage {
			continue
		}
		if idx == v.search.current {
			hl.Current = append(hl.Current, m.Rects...)
		} else {
			hl.Others = append(hl.Others, m.Rects...)
		}
	}

	if hl.Empty() {
		return Highlights{}, false
	}
	return hl, true
}
