package editor

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/events"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Save persists the current document through the injected persist function.
//
// On success the dirty flag clears, the snapshot advances, and lastSavedAt is
// recorded. On failure the document and dirty flag are left untouched so no
// edit is silently lost; the error is returned for user-facing display. The
// persist call itself runs outside the session lock so edits arriving during
// a slow save are not blocked (they make the session dirty again regardless
// of the save's outcome). Cancellation is the caller's concern: pass a
// context with a deadline to bound a stalled backend.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.persist == nil {
		s.mu.Unlock()
		return ferrors.ValidationError("cannot save: no persist function configured").
			WithContext("session", s.id).Build()
	}
	if s.doc == nil {
		s.mu.Unlock()
		return ferrors.ValidationError("cannot save: no document loaded").
			WithContext("session", s.id).Build()
	}
	if s.saving {
		s.mu.Unlock()
		return ferrors.ValidationError("save already in progress").
			WithContext("session", s.id).Build()
	}
	s.saving = true
	doc := s.doc
	meta := s.meta
	s.mu.Unlock()

	start := s.now()
	err := s.persist(ctx, doc, meta)
	s.recorder.ObserveSaveDuration(time.Since(start))

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.mu.Unlock()
		s.recorder.RecordSave("failure")
		s.logger.Error("save failed", logfields.Session(s.id), logfields.Error(err))
		s.publish(events.SaveCompleted{SessionID: s.id, Success: false, Error: err.Error(), At: s.now()})
		return ferrors.WrapError(err, ferrors.CategoryStorage, "failed to save page").
			Retryable().
			WithContext("session", s.id).
			Build()
	}

	s.snapshot = doc.Clone()
	// Edits applied while the persist call was in flight are not covered by
	// this snapshot; only clear dirty when the saved document is still
	// current.
	if s.doc == doc {
		s.dirty = false
		s.guard(false)
	}
	s.lastSavedAt = s.now()
	savedAt := s.lastSavedAt
	s.mu.Unlock()

	s.recorder.RecordSave("success")
	s.logger.Info("page saved", logfields.Session(s.id))
	s.publish(events.SaveCompleted{SessionID: s.id, Success: true, At: savedAt})
	return nil
}

// Discard reverts the document to the last persisted snapshot and clears the
// dirty flag.
func (s *Session) Discard() {
	s.mu.Lock()
	s.doc = s.snapshot.Clone()
	s.dirty = false
	s.guard(false)
	s.mu.Unlock()

	s.recorder.RecordMutation(OpDiscard)
	s.publish(events.DocumentChanged{SessionID: s.id, Op: OpDiscard, Dirty: false, At: s.now()})
}

// Close releases the unload guard. The document is discarded with the
// session; an unsaved close loses buffered edits by design.
func (s *Session) Close() {
	s.mu.Lock()
	s.guard(false)
	s.mu.Unlock()
}
