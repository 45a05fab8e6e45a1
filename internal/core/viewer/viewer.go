// Package viewer owns the complete viewing state of one open
// document: navigation position, render and text caches, jump
// history, and the search, link, and selection engines.
package viewer

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/folio/internal/core/document"
	"github.com/colonyops/folio/internal/core/geom"
	"github.com/colonyops/folio/internal/core/history"
	"github.com/colonyops/folio/internal/core/rendercache"
)

// BackendError wraps a failure reported by the document backend.
type BackendError struct {
	Op   string
	Page int
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed for page %d: %v", e.Op, e.Page, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Highlights partitions rectangles for two-tier rendering: the active
// search match, link, or selection versus the rest on the same page.
type Highlights struct {
	Current []geom.Rect
	Others  []geom.Rect
}

// Empty reports whether there is nothing to highlight.
func (h Highlights) Empty() bool {
	return len(h.Current) == 0 && len(h.Others) == 0
}

// Options tunes a viewer at construction time.
type Options struct {
	// Logger receives per-page scan warnings. The zero value discards.
	Logger zerolog.Logger
	// CacheCapacity bounds the render cache; zero means the default.
	CacheCapacity int
}

// pageTextCache holds lazily extracted page text, shared between the
// viewer and any SearchContext handed out for off-loop match building.
// The mutex is re-entrancy insurance, not a parallelism feature.
type pageTextCache struct {
	mu    sync.Mutex
	pages map[int]*document.PageText
}

func newPageTextCache() *pageTextCache {
	return &pageTextCache{pages: make(map[int]*document.PageText)}
}

func (c *pageTextCache) load(info document.Info, backend document.Backend, pageIndex int) (*document.PageText, error) {
	if pageIndex < 0 || pageIndex >= info.PageCount {
		return nil, fmt.Errorf("page %d: %w", pageIndex, document.ErrPageOutOfRange)
	}

	c.mu.Lock()
	cached, ok := c.pages[pageIndex]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	text, err := backend.PageText(pageIndex)
	if err != nil {
		return nil, &BackendError{Op: "page text", Page: pageIndex, Err: err}
	}

	c.mu.Lock()
	c.pages[pageIndex] = text
	c.mu.Unlock()
	return text, nil
}

func (c *pageTextCache) clear() {
	c.mu.Lock()
	c.pages = make(map[int]*document.PageText)
	c.mu.Unlock()
}

// Viewer is the stateful engine behind one open document.
type Viewer struct {
	// State is the persisted viewing state; the session mutates it
	// through command application and hands it back to the StateStore.
	State document.PersistedState

	info    document.Info
	backend document.Backend
	outline []document.OutlineItem

	renderCache *rendercache.Cache
	textCache   *pageTextCache
	history     *history.History

	search        *searchState
	links         *linkState
	selection     *selectionState
	visualCursor  *SelectionPoint
	lastSelection *selectionSpan
	columnHint    float64

	log zerolog.Logger
}

// New builds a viewer for an opened document. The state is normalized
// against the document's page count before use.
func New(info document.Info, backend document.Backend, state document.PersistedState, outline []document.OutlineItem, opts Options) *Viewer {
	state.Normalize(info.PageCount)

	v := &Viewer{
		State:       state,
		info:        info,
		backend:     backend,
		outline:     outline,
		renderCache: rendercache.New(opts.CacheCapacity),
		textCache:   newPageTextCache(),
		history:     history.New(),
		columnHint:  0.5,
		log:         opts.Logger,
	}
	v.history.RecordInitial(v.Position())
	return v
}

// Info returns the document's identity and page count.
func (v *Viewer) Info() document.Info { return v.info }

// CurrentPage returns the page the viewer is on.
func (v *Viewer) CurrentPage() int { return v.State.CurrentPage }

// Outline returns the document's table of contents.
func (v *Viewer) Outline() []document.OutlineItem { return v.outline }

// Position captures the current page, scale, and viewport as a
// restorable position.
func (v *Viewer) Position() document.Position {
	return document.Position{
		Page:     v.State.CurrentPage,
		Scale:    v.State.Scale,
		Viewport: v.State.Viewport,
	}
}

// Render rasterizes the current page at the current scale, through the
// cache.
func (v *Viewer) Render() (document.RenderImage, error) {
	return v.RenderWithScale(v.State.Scale)
}

// RenderWithScale rasterizes the current page at an explicit scale.
func (v *Viewer) RenderWithScale(scale float64) (document.RenderImage, error) {
	return v.renderPage(v.State.CurrentPage, scale, v.State.DarkMode, v.State.CurrentPage)
}

// PrefetchNeighbors renders up to radius pages on each side of the
// current page into the cache. The sweep always completes; the first
// error encountered is returned afterwards.
func (v *Viewer) PrefetchNeighbors(radius int, scale float64) error {
	if radius <= 0 {
		return nil
	}

	current := v.State.CurrentPage
	dark := v.State.DarkMode
	var firstErr error

	for offset := 1; offset <= radius; offset++ {
		if prev := current - offset; prev >= 0 && prev < v.info.PageCount {
			if _, err := v.renderPage(prev, scale, dark, current); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if next := current + offset; next < v.info.PageCount {
			if _, err := v.renderPage(next, scale, dark, current); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (v *Viewer) renderPage(pageIndex int, scale float64, darkMode bool, referencePage int) (document.RenderImage, error) {
	if pageIndex < 0 || pageIndex >= v.info.PageCount {
		return document.RenderImage{}, fmt.Errorf("page %d: %w", pageIndex, document.ErrPageOutOfRange)
	}

	key := rendercache.NewKey(pageIndex, scale, darkMode)
	if img, ok := v.renderCache.Get(key); ok {
		return img, nil
	}

	img, err := v.backend.RenderPage(document.RenderRequest{
		PageIndex: pageIndex,
		Scale:     scale,
		DarkMode:  darkMode,
	})
	if err != nil {
		return document.RenderImage{}, &BackendError{Op: "render", Page: pageIndex, Err: err}
	}

	v.renderCache.Put(key, img, referencePage)
	return img, nil
}

func (v *Viewer) pageText(pageIndex int) (*document.PageText, error) {
	return v.textCache.load(v.info, v.backend, pageIndex)
}

// Reload swaps in a fresh backend after the underlying file changed.
// Both caches are dropped, marks are re-validated against the new page
// count, all overlay state is reset, and an active search is rebuilt
// so the query survives the edit.
func (v *Viewer) Reload(info document.Info, backend document.Backend, outline []document.OutlineItem) {
	var previousQuery string
	if v.search != nil {
		previousQuery = v.search.query
	}

	v.info = info
	v.backend = backend
	v.outline = outline

	v.renderCache.Clear()
	v.textCache.clear()
	v.search = nil
	v.links = nil
	v.selection = nil
	v.visualCursor = nil
	v.lastSelection = nil
	v.columnHint = 0.5

	v.State.Normalize(info.PageCount)

	if previousQuery != "" {
		if _, err := v.PerformSearch(previousQuery); err != nil {
			v.log.Warn().Err(err).Str("path", v.info.Path).
				Msg("failed to rebuild search state after reload")
		}
	}

	v.syncJumpPosition()
}

// AddMark records a character mark at a page.
func (v *Viewer) AddMark(key rune, page int) {
	v.State.Marks[string(key)] = page
}

// MarkPage looks up a character mark.
func (v *Viewer) MarkPage(key rune) (int, bool) {
	page, ok := v.State.Marks[string(key)]
	return page, ok
}

// AddNamedMark records a named mark at a page.
func (v *Viewer) AddNamedMark(name string, page int) {
	v.State.NamedMarks[name] = page
}

// NamedMarkPage looks up a named mark.
func (v *Viewer) NamedMarkPage(name string) (int, bool) {
	page, ok := v.State.NamedMarks[name]
	return page, ok
}

// NamedMarks returns the named-mark table.
func (v *Viewer) NamedMarks() map[string]int {
	return v.State.NamedMarks
}

// RecordJumpFrom pushes a history entry from a previous position to
// the current one.
func (v *Viewer) RecordJumpFrom(previous document.Position) {
	v.history.RecordNavigation(previous, v.Position())
}

// SyncJumpPosition updates the history's notion of "current" without
// recording a jump. Called after incidental moves.
func (v *Viewer) SyncJumpPosition() {
	v.syncJumpPosition()
}

func (v *Viewer) syncJumpPosition() {
	v.history.RecordCurrent(v.Position())
}

// PopJumpBackward pops the previous history position, if any.
func (v *Viewer) PopJumpBackward() (document.Position, bool) {
	return v.history.JumpBackward(v.Position())
}

// PopJumpForward pops the next history position, if any.
func (v *Viewer) PopJumpForward() (document.Position, bool) {
	return v.history.JumpForward(v.Position())
}

// ApplyPosition restores a history position, clamping it to the
// current document bounds, and reports whether anything changed.
func (v *Viewer) ApplyPosition(pos document.Position) bool {
	changed := false

	targetPage := pos.Page
	if last := v.info.PageCount - 1; targetPage > last {
		targetPage = last
	}
	if targetPage < 0 {
		targetPage = 0
	}
	if targetPage != v.State.CurrentPage {
		v.State.CurrentPage = targetPage
		changed = true
	}

	targetScale := document.ClampScale(pos.Scale)
	if diff := v.State.Scale - targetScale; diff > geom.Epsilon || diff < -geom.Epsilon {
		v.State.Scale = targetScale
		changed = true
	}

	next := pos.Viewport
	next.Clamp()
	if next != v.State.Viewport {
		v.State.Viewport = next
		changed = true
	}

	if v.State.Scale <= 1.0+geom.Epsilon {
		v.State.Viewport.Reset()
	} else {
		v.State.Viewport.Clamp()
	}

	v.syncJumpPosition()
	return changed
}

// GotoPage moves to a page, resetting the viewport and recording a
// jump when the page actually changes.
func (v *Viewer) GotoPage(target int) bool {
	return v.gotoPage(target)
}

// StepPages moves delta pages relative to the current one. Single
// steps only update the history's current position; larger strides
// count as jumps.
func (v *Viewer) StepPages(delta int) bool {
	if delta == 0 {
		return false
	}

	target := v.State.CurrentPage + delta
	if last := v.info.PageCount - 1; target > last {
		target = last
	}
	if target < 0 {
		target = 0
	}
	if target == v.State.CurrentPage {
		return false
	}

	previous := v.Position()
	diff := target - v.State.CurrentPage
	if diff < 0 {
		diff = -diff
	}

	v.State.CurrentPage = target
	v.State.Viewport.Reset()
	if diff > 1 {
		v.RecordJumpFrom(previous)
	} else {
		v.syncJumpPosition()
	}
	return true
}

// ScaleBy multiplies the zoom by factor, clamped to the allowed range.
// At or below 1x the viewport snaps back to the origin; above it the
// pan offset is kept but clamped.
func (v *Viewer) ScaleBy(factor float64) bool {
	scale := document.ClampScale(v.State.Scale * factor)
	if diff := v.State.Scale - scale; diff <= geom.Epsilon && diff >= -geom.Epsilon {
		return false
	}

	v.State.Scale = scale
	if scale <= 1.0+geom.Epsilon {
		v.State.Viewport.Reset()
	} else {
		v.State.Viewport.Clamp()
	}
	v.syncJumpPosition()
	return true
}

// ResetScale returns to 1x with the viewport at the origin. Reports
// whether anything was displaced.
func (v *Viewer) ResetScale() bool {
	scaleChanged := v.State.Scale > 1.0+geom.Epsilon || v.State.Scale < 1.0-geom.Epsilon
	viewportChanged := v.State.Viewport.X > geom.Epsilon || v.State.Viewport.Y > geom.Epsilon

	v.State.Scale = 1.0
	v.State.Viewport.Reset()
	v.syncJumpPosition()
	return scaleChanged || viewportChanged
}

// AdjustViewport pans the zoomed page by a delta.
func (v *Viewer) AdjustViewport(deltaX, deltaY float64) bool {
	if !v.State.Viewport.Adjust(deltaX, deltaY) {
		return false
	}
	v.State.Viewport.Clamp()
	v.syncJumpPosition()
	return true
}

// ToggleDarkMode flips inverted rendering. Cached renders keyed on the
// old mode stay valid for toggling back.
func (v *Viewer) ToggleDarkMode() bool {
	v.State.DarkMode = !v.State.DarkMode
	return v.State.DarkMode
}

// gotoPage moves to a page, resetting the viewport and recording a
// jump when the page actually changes. Shared by search, link, and
// mark navigation.
func (v *Viewer) gotoPage(target int) bool {
	if last := v.info.PageCount - 1; target > last {
		target = last
	}
	if target < 0 {
		target = 0
	}

	previous := v.Position()
	changed := false
	if target != v.State.CurrentPage {
		v.State.CurrentPage = target
		v.State.Viewport.Reset()
		v.RecordJumpFrom(previous)
		changed = true
	}
	v.syncJumpPosition()
	return changed
}
