// Package session coordinates the set of open documents: command
// dispatch, the active-document cursor, state persistence, and the
// outbound event queue.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/folio/internal/core/document"
	"github.com/colonyops/folio/internal/core/eventbus"
	"github.com/colonyops/folio/internal/core/viewer"
)

// Options tunes a session at construction time.
type Options struct {
	// Logger receives session and per-document diagnostics. The zero
	// value discards.
	Logger zerolog.Logger
	// Viewer is applied to every document opened into the session. Its
	// Logger field is overwritten with the session logger.
	Viewer viewer.Options
	// InitialState builds the starting state for a document opened
	// without persisted state, keyed by its path. Nil means
	// document.DefaultState; callers with document rules pass
	// config.InitialState here.
	InitialState func(path string) document.PersistedState
}

// Session owns every open document and routes commands to the active
// one. It is not safe for concurrent use; the caller serializes
// command application the same way it serializes input.
type Session struct {
	documents    []*viewer.Viewer
	active       int
	store        document.StateStore
	events       *eventbus.Queue
	log          zerolog.Logger
	viewerOpt    viewer.Options
	initialState func(path string) document.PersistedState
}

// New builds an empty session persisting through store.
func New(store document.StateStore, opts Options) *Session {
	opts.Viewer.Logger = opts.Logger
	initial := opts.InitialState
	if initial == nil {
		initial = func(string) document.PersistedState { return document.DefaultState() }
	}
	return &Session{
		store:        store,
		events:       eventbus.NewQueue(),
		log:          opts.Logger,
		viewerOpt:    opts.Viewer,
		initialState: initial,
	}
}

// Events returns the session's outbound event queue.
func (s *Session) Events() *eventbus.Queue { return s.events }

// DrainEvents removes and returns every buffered event.
func (s *Session) DrainEvents() []eventbus.Event { return s.events.Drain() }

// Active returns the focused document, or false when none is open.
func (s *Session) Active() (*viewer.Viewer, bool) {
	doc := s.activeDoc()
	return doc, doc != nil
}

// ActiveIndex returns the index of the focused document.
func (s *Session) ActiveIndex() int { return s.active }

// Len returns the number of open documents.
func (s *Session) Len() int { return len(s.documents) }

// Document returns the open document at index.
func (s *Session) Document(index int) (*viewer.Viewer, bool) {
	if index < 0 || index >= len(s.documents) {
		return nil, false
	}
	return s.documents[index], true
}

// ContainsDocument reports whether a document with the given identity
// is open.
func (s *Session) ContainsDocument(id document.ID) bool {
	for _, doc := range s.documents {
		if doc.Info().ID == id {
			return true
		}
	}
	return false
}

// SelectionText returns the active document's selected text, if any.
func (s *Session) SelectionText() (string, bool) {
	doc := s.activeDoc()
	if doc == nil {
		return "", false
	}
	return doc.SelectionText()
}

func (s *Session) activeDoc() *viewer.Viewer {
	if s.active < 0 || s.active >= len(s.documents) {
		return nil
	}
	return s.documents[s.active]
}

func (s *Session) redraw(doc *viewer.Viewer) {
	s.events.Push(eventbus.RedrawNeeded{ID: doc.Info().ID})
}

// OpenWith opens the document at path through the provider, restores
// its persisted state, and focuses it.
func (s *Session) OpenWith(ctx context.Context, provider document.Provider, path string) error {
	backend, err := provider.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	info := backend.Info()
	loaded, err := s.store.Load(info)
	if err != nil {
		return fmt.Errorf("load state for %s: %w", path, err)
	}
	state := s.initialState(path)
	if loaded != nil {
		state = *loaded
	}

	outline := s.loadOutline(backend, info)

	doc := viewer.New(info, backend, state, outline, s.viewerOpt)
	s.documents = append(s.documents, doc)
	s.active = len(s.documents) - 1

	s.log.Debug().Str("path", info.Path).Int("pages", info.PageCount).
		Msg("opened document")
	s.events.Push(eventbus.DocumentOpened{ID: info.ID})
	s.events.Push(eventbus.ActiveDocumentChanged{ID: info.ID})
	return nil
}

// ReloadDocument re-opens a document in place after its file changed.
// Returns false when no open document has the given identity.
func (s *Session) ReloadDocument(ctx context.Context, provider document.Provider, id document.ID) (bool, error) {
	index := -1
	for i, doc := range s.documents {
		if doc.Info().ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return false, nil
	}

	path := s.documents[index].Info().Path
	backend, err := provider.Open(ctx, path)
	if err != nil {
		return false, fmt.Errorf("reload %s: %w", path, err)
	}

	info := backend.Info()
	outline := s.loadOutline(backend, info)

	s.documents[index].Reload(info, backend, outline)
	s.events.Push(eventbus.RedrawNeeded{ID: id})
	s.log.Debug().Str("path", info.Path).Msg("reloaded document after change")
	return true, nil
}

func (s *Session) loadOutline(backend document.Backend, info document.Info) []document.OutlineItem {
	outline, err := backend.Outline()
	if err != nil {
		s.log.Warn().Err(err).Str("path", info.Path).
			Msg("failed to load document outline")
		return nil
	}
	return outline
}

// ApplySearchResults installs externally built matches on the document
// with the given identity, for async match building. Returns whether
// the document's page changed.
func (s *Session) ApplySearchResults(id document.ID, query string, matches []viewer.SearchMatch, startPage int) bool {
	for _, doc := range s.documents {
		if doc.Info().ID != id {
			continue
		}
		changed := doc.ApplySearchResults(query, matches, startPage)
		s.redraw(doc)
		return changed
	}
	return false
}

// Apply executes one command. Commands addressing the active document
// are ignored when nothing is open.
func (s *Session) Apply(cmd Command) error {
	switch c := cmd.(type) {
	case NextPage:
		if doc := s.activeDoc(); doc != nil {
			if doc.StepPages(max1(c.Count)) {
				s.redraw(doc)
			}
		}
	case PrevPage:
		if doc := s.activeDoc(); doc != nil {
			if doc.StepPages(-max1(c.Count)) {
				s.redraw(doc)
			}
		}
	case GotoPage:
		if doc := s.activeDoc(); doc != nil {
			if doc.GotoPage(c.Page) {
				s.redraw(doc)
			}
		}
	case ScaleBy:
		if doc := s.activeDoc(); doc != nil {
			if doc.ScaleBy(c.Factor) {
				s.redraw(doc)
			}
		}
	case ResetScale:
		if doc := s.activeDoc(); doc != nil {
			if doc.ResetScale() {
				s.redraw(doc)
			}
		}
	case AdjustViewport:
		if doc := s.activeDoc(); doc != nil {
			if doc.AdjustViewport(c.DeltaX, c.DeltaY) {
				s.redraw(doc)
			}
		}
	case PutMark:
		if doc := s.activeDoc(); doc != nil {
			doc.AddMark(c.Key, doc.CurrentPage())
		}
	case GotoMark:
		if doc := s.activeDoc(); doc != nil {
			if page, ok := doc.MarkPage(c.Key); ok {
				if doc.GotoPage(page) {
					s.redraw(doc)
				}
			}
		}
	case SaveNamedMark:
		if doc := s.activeDoc(); doc != nil {
			doc.AddNamedMark(c.Name, doc.CurrentPage())
		}
	case GotoNamedMark:
		if doc := s.activeDoc(); doc != nil {
			if page, ok := doc.NamedMarkPage(c.Name); ok {
				if doc.GotoPage(page) {
					s.redraw(doc)
				}
			}
		}
	case Search:
		if doc := s.activeDoc(); doc != nil {
			if _, err := doc.PerformSearch(c.Query); err != nil {
				return err
			}
			s.redraw(doc)
		}
	case SearchNext:
		if doc := s.activeDoc(); doc != nil {
			if _, active := doc.NextSearchMatch(max1(c.Count)); active {
				s.redraw(doc)
			}
		}
	case SearchPrev:
		if doc := s.activeDoc(); doc != nil {
			if _, active := doc.PreviousSearchMatch(max1(c.Count)); active {
				s.redraw(doc)
			}
		}
	case EnterVisualMode:
		if doc := s.activeDoc(); doc != nil {
			changed, err := doc.EnsureVisualCursor()
			if err != nil {
				return err
			}
			if changed {
				s.redraw(doc)
			}
		}
	case StartSelection:
		if doc := s.activeDoc(); doc != nil {
			changed, err := doc.StartSelection()
			if err != nil {
				return err
			}
			if changed {
				s.redraw(doc)
			}
		}
	case MoveVisualCursor:
		if doc := s.activeDoc(); doc != nil {
			changed, err := doc.MoveVisualCursor(c.Motion, max1(c.Count))
			if err != nil {
				return err
			}
			if changed {
				s.redraw(doc)
			}
		}
	case ClearSelection:
		if doc := s.activeDoc(); doc != nil {
			if doc.ClearSelection(true) {
				s.redraw(doc)
			}
		}
	case LeaveVisualMode:
		if doc := s.activeDoc(); doc != nil {
			if doc.LeaveVisualMode(true) {
				s.redraw(doc)
			}
		}
	case RestoreSelection:
		if doc := s.activeDoc(); doc != nil {
			changed, err := doc.RestoreLastSelection()
			if err != nil {
				return err
			}
			if changed {
				s.redraw(doc)
			}
		}
	case SwapVisualCursor:
		if doc := s.activeDoc(); doc != nil {
			if doc.SwapVisualCursor() {
				s.redraw(doc)
			}
		}
	case EnterLinkMode:
		if doc := s.activeDoc(); doc != nil {
			doc.StartLinkMode()
			s.redraw(doc)
		}
	case LeaveLinkMode:
		if doc := s.activeDoc(); doc != nil {
			doc.ClearLinkMode()
			s.redraw(doc)
		}
	case LinkNext:
		if doc := s.activeDoc(); doc != nil {
			if _, active := doc.NextLink(max1(c.Count)); active {
				s.redraw(doc)
			}
		}
	case LinkPrev:
		if doc := s.activeDoc(); doc != nil {
			if _, active := doc.PrevLink(max1(c.Count)); active {
				s.redraw(doc)
			}
		}
	case ActivateLink:
		if doc := s.activeDoc(); doc != nil {
			result := doc.ActivateLink()
			switch result.Kind {
			case viewer.FollowNavigated:
				s.redraw(doc)
			case viewer.FollowExternal:
				s.redraw(doc)
				s.events.Push(eventbus.FollowExternalLink{Target: result.Target})
			}
		}
	case ToggleDarkMode:
		if doc := s.activeDoc(); doc != nil {
			doc.ToggleDarkMode()
			s.redraw(doc)
		}
	case SwitchDocument:
		if c.Index >= 0 && c.Index < len(s.documents) {
			s.active = c.Index
			s.events.Push(eventbus.ActiveDocumentChanged{ID: s.documents[s.active].Info().ID})
		}
	case CloseDocument:
		return s.closeDocument(c.Index)
	case JumpBackward:
		if doc := s.activeDoc(); doc != nil {
			if pos, ok := doc.PopJumpBackward(); ok {
				if doc.ApplyPosition(pos) {
					s.redraw(doc)
				}
			}
		}
	case JumpForward:
		if doc := s.activeDoc(); doc != nil {
			if pos, ok := doc.PopJumpForward(); ok {
				if doc.ApplyPosition(pos) {
					s.redraw(doc)
				}
			}
		}
	}
	return nil
}

func (s *Session) closeDocument(index int) error {
	if index < 0 || index >= len(s.documents) {
		return nil
	}

	doc := s.documents[index]
	s.documents = append(s.documents[:index], s.documents[index+1:]...)

	if err := s.store.Save(doc.Info(), &doc.State); err != nil {
		return fmt.Errorf("save state for %s: %w", doc.Info().Path, err)
	}
	s.events.Push(eventbus.DocumentClosed{ID: doc.Info().ID})

	if len(s.documents) == 0 {
		s.active = 0
	} else if s.active >= len(s.documents) {
		s.active = len(s.documents) - 1
		s.events.Push(eventbus.ActiveDocumentChanged{ID: s.documents[s.active].Info().ID})
	}
	return nil
}

// Persist saves every open document's state.
func (s *Session) Persist() error {
	for _, doc := range s.documents {
		if err := s.store.Save(doc.Info(), &doc.State); err != nil {
			return fmt.Errorf("save state for %s: %w", doc.Info().Path, err)
		}
	}
	return nil
}

func max1(count int) int {
	if count < 1 {
		return 1
	}
	return count
}
