package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
	smw "git.home.luguber.info/inful/sitebuilder/internal/server/middleware"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := New(config.Default(), Options{Store: st})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("X-Tenant-ID", "acme")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func openSession(t *testing.T, ts *httptest.Server) sessionResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sites/main/pages/home/session", openRequest{Layout: "landing"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[sessionResponse](t, resp)
}

func TestMissingTenantHeaderRejected(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/sites/main/pages/home/session", "application/json", bytes.NewBufferString("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOpenSessionNewPage(t *testing.T) {
	_, ts := newTestServer(t)

	sess := openSession(t, ts)
	assert.NotEmpty(t, sess.SessionID)
	assert.False(t, sess.Status.Dirty)
	assert.Empty(t, sess.Sections)
	// an empty landing page suggests its optional types, never required ones
	assert.Contains(t, sess.Missing, registry.TypeFAQ)
	assert.NotContains(t, sess.Missing, registry.TypeHero)
}

func TestOpenSessionUnknownLayout(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sites/main/pages/home/session", openRequest{Layout: "brochure"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMutationAddSection(t *testing.T) {
	_, ts := newTestServer(t)
	sess := openSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/mutations",
		mutationRequest{Op: "add_section", Type: "hero"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[mutationResponse](t, resp)
	assert.Equal(t, "hero", out.Key)
	assert.True(t, out.Status.Dirty)
}

func TestMutationUnknownOp(t *testing.T) {
	_, ts := newTestServer(t)
	sess := openSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/mutations",
		mutationRequest{Op: "explode"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMutationUnknownSession(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/nope/mutations",
		mutationRequest{Op: "add_section", Type: "hero"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNoOpNoticeReturns200(t *testing.T) {
	_, ts := newTestServer(t)
	sess := openSession(t, ts)

	// updating a section that does not exist is a notice, not an error
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/mutations",
		mutationRequest{Op: "update_field", Section: "ghost", Path: "data.headline", Value: "x"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[mutationResponse](t, resp)
	assert.False(t, out.Status.Dirty)
}

func TestSavePersistsAndSurvivesReopen(t *testing.T) {
	_, ts := newTestServer(t)
	sess := openSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/mutations",
		mutationRequest{Op: "add_section", Type: "hero"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[mutationResponse](t, resp)
	assert.False(t, saved.Status.Dirty)

	// new session sees the saved content
	reopened := openSession(t, ts)
	require.Len(t, reopened.Sections, 1)
	assert.Equal(t, "hero", reopened.Sections[0].Key)
}

func TestDiscardRevertsToSnapshot(t *testing.T) {
	_, ts := newTestServer(t)
	sess := openSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/mutations",
		mutationRequest{Op: "add_section", Type: "hero"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/discard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[mutationResponse](t, resp)
	assert.False(t, out.Status.Dirty)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/sessions/"+sess.SessionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[sessionResponse](t, resp)
	assert.Empty(t, state.Sections)
}

func TestMoveEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	sess := openSession(t, ts)

	for _, typ := range []string{"hero", "text", "cta"} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/mutations",
			mutationRequest{Op: "add_section", Type: typ})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/move",
		map[string]string{"sourceKey": "cta", "destinationKey": "hero"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/sessions/"+sess.SessionID, nil)
	state := decode[sessionResponse](t, resp)
	require.Len(t, state.Sections, 3)
	assert.Equal(t, "cta", state.Sections[0].Key)
	assert.Equal(t, "hero", state.Sections[1].Key)
}

func TestCloseSession(t *testing.T) {
	_, ts := newTestServer(t)
	sess := openSession(t, ts)

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/v1/sessions/"+sess.SessionID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/sessions/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTenantIsolation(t *testing.T) {
	_, ts := newTestServer(t)
	sess := openSession(t, ts)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/sessions/"+sess.SessionID, nil)
	require.NoError(t, err)
	req.Header.Set("X-Tenant-ID", "globex")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListPagesAndRevisions(t *testing.T) {
	_, ts := newTestServer(t)
	sess := openSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/mutations",
		mutationRequest{Op: "add_section", Type: "hero"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/sites/main/pages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pages := decode[[]map[string]any](t, resp)
	require.Len(t, pages, 1)
	assert.Equal(t, "home", pages[0]["pageId"])

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/sites/main/pages/home/revisions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	revs := decode[[]map[string]any](t, resp)
	assert.Len(t, revs, 1)
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	health := decode[healthResponse](t, resp)
	assert.Equal(t, "ok", health.Status)
}

func TestMetadataMutation(t *testing.T) {
	_, ts := newTestServer(t)
	sess := openSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/mutations",
		map[string]any{"op": "set_metadata", "metadata": map[string]any{"title": "Front page", "slug": "front", "published": true}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[mutationResponse](t, resp)
	assert.True(t, out.Status.Dirty)
	assert.Equal(t, "Front page", out.Status.Metadata.Title)

	// an empty slug is derived from the title
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+sess.SessionID+"/mutations",
		map[string]any{"op": "set_metadata", "metadata": map[string]any{"title": "Front page"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = decode[mutationResponse](t, resp)
	assert.Equal(t, "front-page", out.Status.Metadata.Slug)
}

func TestPanicRecovery(t *testing.T) {
	srv, _ := newTestServer(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	smw.Chain(srv.logger, srv.adapter)(mux).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}
