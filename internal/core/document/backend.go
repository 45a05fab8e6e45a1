package document

import (
	"context"

	"github.com/colonyops/folio/internal/core/geom"
)

// LinkKind discriminates link actions.
type LinkKind int

const (
	// LinkGoTo navigates to a page within the same document.
	LinkGoTo LinkKind = iota
	// LinkURI opens an external target.
	LinkURI
	// LinkUnsupported is an action the backend recognized but cannot
	// express, kept so the link still participates in traversal.
	LinkUnsupported
)

// LinkAction is what activating a link does.
type LinkAction struct {
	Kind LinkKind
	Page int    // valid when Kind == LinkGoTo
	URI  string // valid when Kind == LinkURI
}

// LinkDefinition is a hyperlink as reported by the backend: its hit
// rectangles plus the action it performs.
type LinkDefinition struct {
	Rects  []geom.Rect
	Action LinkAction
}

// ExternalLinkKind discriminates external link targets.
type ExternalLinkKind int

const (
	// ExternalURL is a web or other scheme URL.
	ExternalURL ExternalLinkKind = iota
	// ExternalFile is a path on the local filesystem.
	ExternalFile
)

// ExternalLink is a link target the engine cannot follow itself; the
// event consumer hands it to a platform opener.
type ExternalLink struct {
	Kind   ExternalLinkKind
	Target string
}

// Backend is the rendering and text-extraction source for one
// document. Render is the only required capability; the rest are
// optional and degrade as documented. Implementations must be safe for
// reuse from the owning viewer's render and prefetch paths.
type Backend interface {
	// Info returns the document's identity and page count.
	Info() Info

	// RenderPage rasterizes one page. Returns ErrPageOutOfRange for a
	// bad index.
	RenderPage(req RenderRequest) (RenderImage, error)

	// Outline returns the table of contents, or an empty slice when
	// the document has none.
	Outline() ([]OutlineItem, error)

	// PageText extracts the page's text and glyph geometry. Backends
	// without text extraction return ErrUnsupported.
	PageText(pageIndex int) (*PageText, error)

	// SearchPage returns geometry-aware hits for the query on one
	// page, one rectangle set per hit. An empty result triggers the
	// caller's substring fallback.
	SearchPage(pageIndex int, query string) ([][]geom.Rect, error)

	// PageLinks returns the page's hyperlinks, or an empty slice.
	PageLinks(pageIndex int) ([]LinkDefinition, error)
}

// BaseBackend provides no-op defaults for the optional Backend
// capabilities. Embed it and override what the format supports.
type BaseBackend struct{}

// Outline implements Backend with an empty table of contents.
func (BaseBackend) Outline() ([]OutlineItem, error) { return nil, nil }

// PageText implements Backend by declining text extraction.
func (BaseBackend) PageText(int) (*PageText, error) { return nil, ErrUnsupported }

// SearchPage implements Backend with no structured hits.
func (BaseBackend) SearchPage(int, string) ([][]geom.Rect, error) { return nil, nil }

// PageLinks implements Backend with no links.
func (BaseBackend) PageLinks(int) ([]LinkDefinition, error) { return nil, nil }

// Provider opens documents by path, producing a Backend for each.
type Provider interface {
	Open(ctx context.Context, path string) (Backend, error)
}

// StateStore persists per-document viewing state keyed by document
// identity. Load returns (nil, nil) when no state exists. Save is
// expected to be atomic (write-temp-then-rename).
type StateStore interface {
	Load(info Info) (*PersistedState, error)
	Save(info Info, state *PersistedState) error
}
