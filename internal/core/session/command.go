package session

import "github.com/colonyops/folio/internal/core/viewer"

// Command is one operation applied to the session's active document,
// or to the session itself. Frontends translate key input into
// commands and feed them to Apply.
type Command interface {
	isCommand()
}

// NextPage steps Count pages forward.
type NextPage struct {
	Count int
}

// PrevPage steps Count pages backward.
type PrevPage struct {
	Count int
}

// GotoPage jumps to an absolute page index.
type GotoPage struct {
	Page int
}

// ScaleBy multiplies the zoom by Factor.
type ScaleBy struct {
	Factor float64
}

// ResetScale returns to 1x zoom at the page origin.
type ResetScale struct{}

// AdjustViewport pans the zoomed page.
type AdjustViewport struct {
	DeltaX float64
	DeltaY float64
}

// PutMark records a character mark at the current page.
type PutMark struct {
	Key rune
}

// GotoMark navigates to a character mark. Unknown marks are ignored.
type GotoMark struct {
	Key rune
}

// SaveNamedMark records a named mark at the current page.
type SaveNamedMark struct {
	Name string
}

// GotoNamedMark navigates to a named mark. Unknown names are ignored.
type GotoNamedMark struct {
	Name string
}

// Search starts a new search; an empty query clears the active one.
type Search struct {
	Query string
}

// SearchNext advances to a later match, wrapping around.
type SearchNext struct {
	Count int
}

// SearchPrev advances to an earlier match, wrapping around.
type SearchPrev struct {
	Count int
}

// EnterVisualMode places the visual cursor without selecting.
type EnterVisualMode struct{}

// StartSelection anchors a selection at the visual cursor.
type StartSelection struct{}

// MoveVisualCursor applies a cursor motion Count times.
type MoveVisualCursor struct {
	Motion viewer.Motion
	Count  int
}

// ClearSelection drops the selection, remembering it for restore.
type ClearSelection struct{}

// LeaveVisualMode drops the selection and the cursor.
type LeaveVisualMode struct{}

// RestoreSelection re-activates the last remembered selection.
type RestoreSelection struct{}

// SwapVisualCursor exchanges the selection's anchor and head.
type SwapVisualCursor struct{}

// EnterLinkMode collects the document's links for traversal.
type EnterLinkMode struct{}

// LeaveLinkMode exits link mode.
type LeaveLinkMode struct{}

// LinkNext selects a later link, wrapping around.
type LinkNext struct {
	Count int
}

// LinkPrev selects an earlier link, wrapping around.
type LinkPrev struct {
	Count int
}

// ActivateLink follows the selected link.
type ActivateLink struct{}

// ToggleDarkMode flips inverted rendering.
type ToggleDarkMode struct{}

// SwitchDocument focuses the document at Index.
type SwitchDocument struct {
	Index int
}

// CloseDocument removes the document at Index, saving its state.
type CloseDocument struct {
	Index int
}

// JumpBackward pops the previous jump-history position.
type JumpBackward struct{}

// JumpForward pops the next jump-history position.
type JumpForward struct{}

func (NextPage) isCommand()         {}
func (PrevPage) isCommand()         {}
func (GotoPage) isCommand()         {}
func (ScaleBy) isCommand()          {}
func (ResetScale) isCommand()       {}
func (AdjustViewport) isCommand()   {}
func (PutMark) isCommand()          {}
func (GotoMark) isCommand()         {}
func (SaveNamedMark) isCommand()    {}
func (GotoNamedMark) isCommand()    {}
func (Search) isCommand()           {}
func (SearchNext) isCommand()       {}
func (SearchPrev) isCommand()       {}
func (EnterVisualMode) isCommand()  {}
func (StartSelection) isCommand()   {}
func (MoveVisualCursor) isCommand() {}
func (ClearSelection) isCommand()   {}
func (LeaveVisualMode) isCommand()  {}
func (RestoreSelection) isCommand() {}
func (SwapVisualCursor) isCommand() {}
func (EnterLinkMode) isCommand()    {}
func (LeaveLinkMode) isCommand()    {}
func (LinkNext) isCommand()         {}
func (LinkPrev) isCommand()         {}
func (ActivateLink) isCommand()     {}
func (ToggleDarkMode) isCommand()   {}
func (SwitchDocument) isCommand()   {}
func (CloseDocument) isCommand()    {}
func (JumpBackward) isCommand()     {}
func (JumpForward) isCommand()      {}
