package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/drag"
	"git.home.luguber.info/inful/sitebuilder/internal/editor"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/publish"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
	"git.home.luguber.info/inful/sitebuilder/internal/tenant"
	"git.home.luguber.info/inful/sitebuilder/internal/util/slug"
)

// openRequest is the body for opening an editing session.
type openRequest struct {
	Layout string `json:"layout"`
}

// sessionResponse is returned when a session is opened or inspected.
type sessionResponse struct {
	SessionID string                  `json:"sessionId"`
	Status    editor.Status           `json:"status"`
	Document  json.RawMessage         `json:"document"`
	Sections  []document.KeyedSection `json:"sections"`
	Missing   []registry.SectionType  `json:"missingSections"`
}

// mutationRequest is the envelope for all section mutations. Op selects the
// operation; the other fields are read per-op.
type mutationRequest struct {
	Op         string           `json:"op"`
	Section    string           `json:"section,omitempty"`
	Path       string           `json:"path,omitempty"`
	Value      any              `json:"value,omitempty"`
	Collection string           `json:"collection,omitempty"`
	Index      *int             `json:"index,omitempty"`
	Item       any              `json:"item,omitempty"`
	Patch      document.Data    `json:"patch,omitempty"`
	Type       string           `json:"type,omitempty"`
	Direction  string           `json:"direction,omitempty"`
	Order      []string         `json:"order,omitempty"`
	Silent     bool             `json:"silent,omitempty"`
	Metadata   *editor.Metadata `json:"metadata,omitempty"`
}

// mutationResponse reports the session state after a mutation.
type mutationResponse struct {
	SessionID string        `json:"sessionId"`
	Key       string        `json:"key,omitempty"` // minted key for add/duplicate
	Status    editor.Status `json:"status"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Sessions  int       `json:"sessions"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	t, err := tenant.FromContext(r.Context())
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("no tenant in request").Build())
		return
	}

	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("invalid request body").
			WithContext("cause", err.Error()).Build())
		return
	}
	if req.Layout == "" {
		req.Layout = "landing"
	}

	sess, err := s.sessions.Open(r.Context(), t.ID, r.PathValue("site"), r.PathValue("page"), req.Layout)
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	s.writeSession(w, r, sess, http.StatusCreated)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeSession(w, r, sess, http.StatusOK)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, sess *ManagedSession, status int) {
	doc := sess.Document()
	raw, err := doc.ToJSON()
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	layout := s.layouts[sess.Layout]
	writeJSON(w, status, sessionResponse{
		SessionID: sess.ID(),
		Status:    sess.Status(),
		Document:  raw,
		Sections:  document.SortedSections(doc),
		Missing:   document.MissingSections(doc, layout),
	})
}

func (s *Server) handleMutation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req mutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("invalid request body").
			WithContext("cause", err.Error()).Build())
		return
	}

	key, err := s.dispatch(sess, req)
	if err != nil {
		// no-op notices are reported in-band, not as HTTP errors
		if !ferrors.IsNotice(err) {
			s.adapter.WriteErrorResponse(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, mutationResponse{
		SessionID: sess.ID(),
		Key:       key,
		Status:    sess.Status(),
	})
}

// dispatch routes a mutation envelope to the session operation it names.
func (s *Server) dispatch(sess *ManagedSession, req mutationRequest) (string, error) {
	switch req.Op {
	case editor.OpUpdateData:
		return "", sess.UpdateSectionData(req.Section, req.Patch)
	case editor.OpUpdateField:
		return "", sess.UpdateField(req.Section, req.Path, req.Value)
	case editor.OpUpdateItem:
		if req.Index == nil {
			return "", ferrors.ValidationError("index is required").Build()
		}
		return "", sess.UpdateRepeatingItem(req.Section, req.Collection, *req.Index, req.Patch)
	case editor.OpAddItem:
		return "", sess.AddRepeatingItem(req.Section, req.Collection, req.Item)
	case editor.OpDeleteItem:
		if req.Index == nil {
			return "", ferrors.ValidationError("index is required").Build()
		}
		return "", sess.DeleteRepeatingItem(req.Section, req.Collection, *req.Index)
	case editor.OpUpdateSettings:
		return "", sess.UpdateSettings(req.Section, req.Patch, req.Silent)
	case editor.OpHideSection:
		return "", sess.HideSection(req.Section)
	case editor.OpShowSection:
		return "", sess.ShowSection(req.Section)
	case editor.OpDeleteSection:
		return "", sess.DeleteSection(req.Section)
	case editor.OpAddSection:
		return sess.AddSection(registry.SectionType(req.Type))
	case editor.OpDuplicateSection:
		return sess.DuplicateSection(req.Section)
	case editor.OpReorderDirection:
		return "", sess.ReorderByDirection(req.Section, document.Direction(req.Direction))
	case editor.OpReorderPermutation:
		return "", sess.ReorderByPermutation(req.Order)
	case "set_metadata":
		if req.Metadata == nil {
			return "", ferrors.ValidationError("metadata is required").Build()
		}
		meta := *req.Metadata
		if meta.Slug == "" {
			meta.Slug = slug.Make(meta.Title)
		}
		sess.SetMetadata(meta)
		return "", nil
	default:
		return "", ferrors.ValidationError("unknown operation").
			WithContext("op", req.Op).Build()
	}
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var mv drag.Move
	if err := json.NewDecoder(r.Body).Decode(&mv); err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("invalid request body").
			WithContext("cause", err.Error()).Build())
		return
	}

	if err := sess.ApplyMove(mv); err != nil && !ferrors.IsNotice(err) {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mutationResponse{SessionID: sess.ID(), Status: sess.Status()})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := sess.Save(r.Context()); err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	meta := sess.Status().Metadata
	if err := s.publisher.PageSaved(publish.PageSavedEvent{
		Tenant:    sess.Tenant,
		Site:      sess.Site,
		PageID:    sess.PageID,
		Title:     meta.Title,
		Slug:      meta.Slug,
		Published: meta.Published,
	}); err != nil {
		// the save already succeeded; a publish failure is not the client's problem
		s.logger.Warn("Failed to publish save event", "error", err)
	}

	writeJSON(w, http.StatusOK, mutationResponse{SessionID: sess.ID(), Status: sess.Status()})
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Discard()
	writeJSON(w, http.StatusOK, mutationResponse{SessionID: sess.ID(), Status: sess.Status()})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	t, err := tenant.FromContext(r.Context())
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("no tenant in request").Build())
		return
	}
	if err := s.sessions.Close(t.ID, r.PathValue("id")); err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	t, err := tenant.FromContext(r.Context())
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("no tenant in request").Build())
		return
	}

	pages, err := s.store.ListPages(r.Context(), t.ID, r.PathValue("site"))
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	type pageSummary struct {
		PageID    string    `json:"pageId"`
		Title     string    `json:"title"`
		Slug      string    `json:"slug"`
		Published bool      `json:"published"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
	out := make([]pageSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, pageSummary{
			PageID:    p.PageID,
			Title:     p.Title,
			Slug:      p.Slug,
			Published: p.Published,
			UpdatedAt: p.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRevisions(w http.ResponseWriter, r *http.Request) {
	t, err := tenant.FromContext(r.Context())
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("no tenant in request").Build())
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	revs, err := s.store.Revisions(r.Context(), t.ID, r.PathValue("site"), r.PathValue("page"), limit)
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	type revisionSummary struct {
		ID      int64     `json:"id"`
		Title   string    `json:"title"`
		SavedAt time.Time `json:"savedAt"`
	}
	out := make([]revisionSummary, 0, len(revs))
	for _, rev := range revs {
		out = append(out, revisionSummary{ID: rev.ID, Title: rev.Title, SavedAt: rev.SavedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Sessions:  s.sessions.Count(),
	})
}

// session resolves the {id} path value against the tenant's sessions,
// writing the error response itself on failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*ManagedSession, bool) {
	t, err := tenant.FromContext(r.Context())
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("no tenant in request").Build())
		return nil, false
	}
	sess, err := s.sessions.Get(t.ID, r.PathValue("id"))
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
