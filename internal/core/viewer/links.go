package viewer

import (
	"github.com/colonyops/folio/internal/core/document"
	"github.com/colonyops/folio/internal/core/geom"
)

// LinkSummary describes the active link mode for status display.
type LinkSummary struct {
	Total int
	// CurrentIndex is -1 when no link is selected yet.
	CurrentIndex int
}

// FollowKind discriminates link activation outcomes.
type FollowKind int

const (
	// FollowNone means link mode is inactive or no link is selected.
	FollowNone FollowKind = iota
	// FollowNavigated means the link moved within the document.
	FollowNavigated
	// FollowExternal means the caller must dispatch an external target.
	FollowExternal
	// FollowUnsupported means the link's action cannot be expressed.
	FollowUnsupported
)

// FollowResult is the outcome of activating the selected link.
type FollowResult struct {
	Kind        FollowKind
	PageChanged bool
	Target      document.ExternalLink
}

type linkEntry struct {
	page   int
	rects  []geom.Rect
	action document.LinkAction
}

type linkState struct {
	links []linkEntry
	// current is -1 until traversal seeds it.
	current int
}

// StartLinkMode collects every page's links into traversal order. The
// current index starts on the first link of the current page, or
// unset when the current page has none; the first advance seeds it.
func (v *Viewer) StartLinkMode() {
	entries := v.collectLinkEntries()

	current := -1
	for idx, link := range entries {
		if link.page == v.State.CurrentPage {
			current = idx
			break
		}
	}

	v.links = &linkState{links: entries, current: current}
}

// ClearLinkMode leaves link mode.
func (v *Viewer) ClearLinkMode() {
	v.links = nil
}

// collectLinkEntries scans all pages, clamping and validating hit
// rectangles and dropping links left without any. Per-page failures
// are logged and skipped.
func (v *Viewer) collectLinkEntries() []linkEntry {
	var entries []linkEntry
	for page := 0; page < v.info.PageCount; page++ {
		definitions, err := v.backend.PageLinks(page)
		if err != nil {
			v.log.Warn().Err(err).Int("page", page).Str("path", v.info.Path).
				Msg("failed to collect page links")
			continue
		}

		for _, def := range definitions {
			valid := make([]geom.Rect, 0, len(def.Rects))
			for _, rect := range def.Rects {
				clamped := rect.Clamped()
				if clamped.Valid() {
					valid = append(valid, clamped)
				}
			}
			if len(valid) == 0 {
				continue
			}
			entries = append(entries, linkEntry{
				page:   page,
				rects:  valid,
				action: def.Action,
			})
		}
	}
	return entries
}

// NextLink advances count links forward with wraparound. The second
// return is false when link mode is inactive.
func (v *Viewer) NextLink(count int) (changed, active bool) {
	return v.advanceLink(stepForward, count)
}

// PrevLink advances count links backward with wraparound.
func (v *Viewer) PrevLink(count int) (changed, active bool) {
	return v.advanceLink(stepBackward, count)
}

func (v *Viewer) advanceLink(dir direction, count int) (changed, active bool) {
	state := v.links
	if state == nil {
		return false, false
	}
	if count == 0 || len(state.links) == 0 {
		return false, true
	}

	// The first advance after entering link mode on a link-less page
	// seeds the index instead of stepping: first link at or after the
	// current page, wrapping to the first link overall.
	if state.current < 0 {
		desired := -1
		for idx, link := range state.links {
			if link.page == v.State.CurrentPage {
				desired = idx
				break
			}
		}
		if desired < 0 {
			for idx, link := range state.links {
				if link.page > v.State.CurrentPage {
					desired = idx
					break
				}
			}
		}
		if desired < 0 {
			desired = 0
		}
		state.current = desired
		return v.applyLinkIndex(desired), true
	}

	total := len(state.links)
	current := state.current
	if current >= total {
		current = total - 1
	}

	steps := count % total
	if steps == 0 {
		return v.applyLinkIndex(current), true
	}

	var target int
	switch dir {
	case stepForward:
		target = (current + steps) % total
	case stepBackward:
		target = (current + total - steps) % total
	}
	return v.applyLinkIndex(target), true
}

func (v *Viewer) applyLinkIndex(index int) bool {
	state := v.links
	if state == nil {
		return false
	}
	if len(state.links) == 0 || index < 0 || index >= len(state.links) {
		state.current = -1
		return false
	}

	state.current = index
	return v.gotoPage(state.links[index].page)
}

// ActivateLink follows the selected link: internal targets navigate,
// external targets are reported for the caller to dispatch.
func (v *Viewer) ActivateLink() FollowResult {
	state := v.links
	if state == nil || state.current < 0 || state.current >= len(state.links) {
		return FollowResult{Kind: FollowNone}
	}

	link := state.links[state.current]
	switch link.action.Kind {
	case document.LinkGoTo:
		changed := v.gotoPage(link.action.Page)
		return FollowResult{Kind: FollowNavigated, PageChanged: changed}
	case document.LinkURI:
		return FollowResult{
			Kind:   FollowExternal,
			Target: document.ExternalLink{Kind: document.ExternalURL, Target: link.action.URI},
		}
	default:
		return FollowResult{Kind: FollowUnsupported}
	}
}

// LinkSummary returns the active link mode's status, if any.
func (v *Viewer) LinkSummary() (LinkSummary, bool) {
	if v.links == nil {
		return LinkSummary{}, false
	}
	return LinkSummary{
		Total:        len(v.links.links),
		CurrentIndex: v.links.current,
	}, true
}

// LinkHighlights partitions the current page's link rectangles into
// the selected link versus the others.
func (v *Viewer) LinkHighlights() (Highlights, bool) {
	if v.links == nil {
		return Highlights{}, false
	}

	var hl Highlights
	for idx, link := range v.links.links {
		if link.page != v.State.CurrentPage {
			continue
		}
		if idx == v.links.current {
			hl.Current = append(hl.Current, link.rects...)
		} else {
			hl.Others = append(hl.Others, link.rects...)
		}
	}

	if hl.Empty() {
		return Highlights{}, false
	}
	return hl, true
}
