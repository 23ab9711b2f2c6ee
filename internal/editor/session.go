// Package editor implements the editing session for one page: it owns the
// in-memory document, tracks dirty state against the last persisted snapshot,
// and reconciles buffered edits with the backend through an injected persist
// function. All mutations go through the session so that dirty tracking,
// notices, and instrumentation stay consistent.
package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/events"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
)

// Operation names, used for notices and metrics labels.
const (
	OpUpdateData         = "update_section_data"
	OpUpdateField        = "update_field"
	OpUpdateItem         = "update_repeating_item"
	OpAddItem            = "add_repeating_item"
	OpDeleteItem         = "delete_repeating_item"
	OpUpdateSettings     = "update_settings"
	OpHideSection        = "hide_section"
	OpShowSection        = "show_section"
	OpDeleteSection      = "delete_section"
	OpAddSection         = "add_section"
	OpDuplicateSection   = "duplicate_section"
	OpReorderDirection   = "reorder_direction"
	OpReorderPermutation = "reorder_permutation"
	OpMove               = "move_section"
	OpSave               = "save"
	OpDiscard            = "discard"
)

// Metadata is the page metadata saved alongside the document.
type Metadata struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Published bool   `json:"published"`
}

// PersistFunc persists a document and its metadata. Returning an error
// signals save failure; the session leaves the document untouched and keeps
// it dirty.
type PersistFunc func(ctx context.Context, doc *document.Document, meta Metadata) error

// UnloadGuard is toggled whenever the dirty state changes so the host can
// intercept navigation away from the editor while edits are unsaved.
type UnloadGuard func(active bool)

// Options configures a session. Zero values fall back to sane defaults; a
// session without a Persist function can edit but not save.
type Options struct {
	SessionID string
	Layout    *registry.Layout
	Metadata  Metadata
	Persist   PersistFunc
	Bus       *events.Bus
	Recorder  metrics.Recorder
	Logger    *slog.Logger
	Guard     UnloadGuard
}

// Status is a point-in-time view of the session's coordinator state.
type Status struct {
	SessionID   string    `json:"sessionId"`
	Dirty       bool      `json:"dirty"`
	Saving      bool      `json:"saving"`
	LastSavedAt time.Time `json:"lastSavedAt"`
	Metadata    Metadata  `json:"metadata"`
}

// Session coordinates edits to one page document.
type Session struct {
	id     string
	layout *registry.Layout

	mu          sync.Mutex
	doc         *document.Document
	snapshot    *document.Document // last persisted document
	dirty       bool
	saving      bool
	lastSavedAt time.Time
	meta        Metadata

	persist  PersistFunc
	bus      *events.Bus
	recorder metrics.Recorder
	logger   *slog.Logger
	guard    UnloadGuard

	now func() time.Time
}

// NewSession opens a session over a loaded document. The document becomes the
// session's last-persisted snapshot; Discard always returns to it until a
// save succeeds.
func NewSession(doc *document.Document, opts Options) *Session {
	if doc == nil {
		doc = document.New()
	}
	id := opts.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	guard := opts.Guard
	if guard == nil {
		guard = func(bool) {}
	}
	return &Session{
		id:       id,
		layout:   opts.Layout,
		doc:      doc,
		snapshot: doc.Clone(),
		meta:     opts.Metadata,
		persist:  opts.Persist,
		bus:      opts.Bus,
		recorder: rec,
		logger:   logger,
		guard:    guard,
		now:      time.Now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Document returns the current document value. The value is immutable by
// convention; callers must not modify it and should re-read after mutations.
func (s *Session) Document() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Status returns the coordinator state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		SessionID:   s.id,
		Dirty:       s.dirty,
		Saving:      s.saving,
		LastSavedAt: s.lastSavedAt,
		Metadata:    s.meta,
	}
}

// IsDirty reports whether the document differs from the last persisted
// snapshot. Dirty is set unconditionally by every applied mutation; the
// session does not attempt deep-equality suppression.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// ShouldBlockUnload reports whether navigating away should be intercepted.
func (s *Session) ShouldBlockUnload() bool {
	return s.IsDirty()
}

// SetMetadata replaces the page metadata and marks the session dirty.
func (s *Session) SetMetadata(meta Metadata) {
	s.mu.Lock()
	s.meta = meta
	s.markDirtyLocked()
	s.mu.Unlock()
	s.publish(events.DocumentChanged{SessionID: s.id, Op: "set_metadata", Dirty: true, At: s.now()})
}

// markDirtyLocked flips the dirty flag and engages the unload guard.
// Callers must hold s.mu.
func (s *Session) markDirtyLocked() {
	if !s.dirty {
		s.dirty = true
		s.guard(true)
	}
}

// apply runs an engine operation, updates dirty state, and fans out notices.
// The silent flag suppresses the change event, not the mutation itself.
func (s *Session) apply(op, section string, silent bool, fn func(*document.Document) (*document.Document, error)) error {
	s.mu.Lock()
	next, err := fn(s.doc)
	if err != nil {
		s.mu.Unlock()
		s.reportFailure(op, section, err)
		return err
	}
	changed := next != s.doc
	s.doc = next
	if changed {
		s.markDirtyLocked()
	}
	s.mu.Unlock()

	if changed {
		s.recorder.RecordMutation(op)
		if !silent {
			s.publish(events.DocumentChanged{SessionID: s.id, Op: op, Section: section, Dirty: true, At: s.now()})
		}
	}
	return nil
}

// reportFailure surfaces a rejected or no-op operation as a notice.
// Warnings and boundary notices never escalate; the document is unchanged.
func (s *Session) reportFailure(op, section string, err error) {
	category := string(ferrors.GetCategory(err))
	s.recorder.RecordMutationRejected(op, category)

	level := events.LevelError
	if ferrors.IsNotice(err) {
		level = events.LevelWarning
	}
	s.recorder.RecordNotice(string(level))

	s.logger.Warn("editor operation rejected",
		logfields.Session(s.id),
		logfields.Op(op),
		logfields.Section(section),
		logfields.Error(err))

	s.publish(events.Notice{
		SessionID: s.id,
		Level:     level,
		Op:        op,
		Section:   section,
		Message:   noticeMessage(err),
		At:        s.now(),
	})
}

func noticeMessage(err error) string {
	if classified, ok := ferrors.AsClassified(err); ok {
		return classified.Message()
	}
	return err.Error()
}

func (s *Session) publish(evt any) {
	if s.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.bus.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish editor event", logfields.Session(s.id), logfields.Error(err))
	}
}
