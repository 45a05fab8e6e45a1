// Package eventbus defines the outbound session events and the
// drainable queue that carries them to the frontend between input
// iterations.
package eventbus

import "github.com/colonyops/folio/internal/core/document"

// Event is implemented by every outbound event payload.
type Event interface {
	isEvent()
}

// DocumentOpened is emitted when a document joins the session.
type DocumentOpened struct {
	ID document.ID
}

// DocumentClosed is emitted when a document leaves the session.
type DocumentClosed struct {
	ID document.ID
}

// ActiveDocumentChanged is emitted when the focused document changes.
type ActiveDocumentChanged struct {
	ID document.ID
}

// RedrawNeeded is emitted when a document's visible state changed and
// the frontend should re-render it.
type RedrawNeeded struct {
	ID document.ID
}

// FollowExternalLink is emitted when an activated link targets
// something outside the engine; the consumer must invoke a platform
// opener.
type FollowExternalLink struct {
	Target document.ExternalLink
}

func (DocumentOpened) isEvent()        {}
func (DocumentClosed) isEvent()        {}
func (ActiveDocumentChanged) isEvent() {}
func (RedrawNeeded) isEvent()          {}
func (FollowExternalLink) isEvent()    {}
