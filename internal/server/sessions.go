// Package server exposes the page editor over HTTP.
package server

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/editor"
	"git.home.luguber.info/inful/sitebuilder/internal/events"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
	"git.home.luguber.info/inful/sitebuilder/internal/util/slug"
)

// ManagedSession binds an editor session to its page coordinates.
type ManagedSession struct {
	*editor.Session
	Tenant string
	Site   string
	PageID string
	Layout string
}

// SessionManager owns the live editor sessions. One session edits one page;
// concurrent opens of the same page get independent sessions and the store
// resolves conflicting saves last-write-wins.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*ManagedSession

	store    store.Store
	layouts  map[string]*registry.Layout
	bus      *events.Bus
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewSessionManager creates the manager. The bus is shared: every session
// publishes onto it tagged with its session id.
func NewSessionManager(st store.Store, layouts map[string]*registry.Layout, bus *events.Bus, recorder metrics.Recorder, logger *slog.Logger) *SessionManager {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions: make(map[string]*ManagedSession),
		store:    st,
		layouts:  layouts,
		bus:      bus,
		recorder: recorder,
		logger:   logger,
	}
}

// Open loads the page from the store (or starts a blank document for a new
// page) and begins an editing session on it.
func (m *SessionManager) Open(ctx context.Context, tenantID, site, pageID, layoutName string) (*ManagedSession, error) {
	layout, ok := m.layouts[layoutName]
	if !ok {
		return nil, ferrors.ValidationError("unknown layout").
			WithContext("layout", layoutName).Build()
	}

	doc := document.New()
	meta := editor.Metadata{Title: pageID, Slug: slug.Make(pageID)}

	page, err := m.store.LoadPage(ctx, tenantID, site, pageID)
	switch {
	case err == nil:
		doc, err = document.FromJSON(page.Document)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "stored document is unreadable").
				WithContext("page", pageID).Build()
		}
		meta = editor.Metadata{Title: page.Title, Slug: page.Slug, Published: page.Published}
	case ferrors.HasCategory(err, ferrors.CategoryNotFound):
		// new page starts empty
	default:
		return nil, err
	}

	sess := editor.NewSession(doc, editor.Options{
		Layout:   layout,
		Metadata: meta,
		Persist:  store.PersistFunc(m.store, tenantID, site, pageID),
		Bus:      m.bus,
		Recorder: m.recorder,
		Logger:   m.logger,
	})

	managed := &ManagedSession{
		Session: sess,
		Tenant:  tenantID,
		Site:    site,
		PageID:  pageID,
		Layout:  layoutName,
	}

	m.mu.Lock()
	m.sessions[sess.ID()] = managed
	m.recorder.SetActiveSessions(len(m.sessions))
	m.mu.Unlock()

	m.logger.Info("Editor session opened",
		logfields.Session(sess.ID()),
		logfields.Tenant(tenantID),
		logfields.Site(site),
		logfields.Page(pageID),
		logfields.Layout(layoutName))

	return managed, nil
}

// Get returns a live session by id, scoped to the tenant that opened it.
func (m *SessionManager) Get(tenantID, sessionID string) (*ManagedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok || sess.Tenant != tenantID {
		return nil, ferrors.NewError(ferrors.CategoryNotFound, "session not found").
			WithContext("session", sessionID).Build()
	}
	return sess, nil
}

// Close ends a session and releases its unload guard.
func (m *SessionManager) Close(tenantID, sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if ok && sess.Tenant == tenantID {
		delete(m.sessions, sessionID)
	} else {
		ok = false
	}
	m.recorder.SetActiveSessions(len(m.sessions))
	m.mu.Unlock()

	if !ok {
		return ferrors.NewError(ferrors.CategoryNotFound, "session not found").
			WithContext("session", sessionID).Build()
	}

	sess.Session.Close()
	m.logger.Info("Editor session closed", logfields.Session(sessionID))
	return nil
}

// CloseAll ends every session, used during shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*ManagedSession)
	m.recorder.SetActiveSessions(0)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Session.Close()
	}
}

// Count reports the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
