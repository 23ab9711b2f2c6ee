package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/editor"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testPage(doc string) Page {
	return Page{
		Tenant:   "acme",
		Site:     "main",
		PageID:   "home",
		Title:    "Home",
		Slug:     "home",
		Document: []byte(doc),
	}
}

func TestSaveAndLoadPage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	page := testPage(`{"sections":{}}`)
	page.Published = true
	require.NoError(t, s.SavePage(ctx, page))

	got, err := s.LoadPage(ctx, "acme", "main", "home")
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Title)
	assert.True(t, got.Published)
	assert.JSONEq(t, `{"sections":{}}`, string(got.Document))
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestLoadPageNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadPage(context.Background(), "acme", "main", "missing")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestSaveUpsertsAndAppendsRevisions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePage(ctx, testPage(`{"v":1}`)))
	second := testPage(`{"v":2}`)
	second.Title = "Home v2"
	require.NoError(t, s.SavePage(ctx, second))

	got, err := s.LoadPage(ctx, "acme", "main", "home")
	require.NoError(t, err)
	assert.Equal(t, "Home v2", got.Title)
	assert.JSONEq(t, `{"v":2}`, string(got.Document))

	revs, err := s.Revisions(ctx, "acme", "main", "home", 10)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	// most recent first
	assert.JSONEq(t, `{"v":2}`, string(revs[0].Document))
	assert.JSONEq(t, `{"v":1}`, string(revs[1].Document))

	rev, err := s.Revision(ctx, revs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", rev.Title)
}

func TestListPagesScopedByTenantAndSite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePage(ctx, testPage(`{}`)))
	other := testPage(`{}`)
	other.Tenant = "globex"
	require.NoError(t, s.SavePage(ctx, other))

	pages, err := s.ListPages(ctx, "acme", "main")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "acme", pages[0].Tenant)
}

func TestDeletePageRemovesRevisions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePage(ctx, testPage(`{}`)))
	require.NoError(t, s.DeletePage(ctx, "acme", "main", "home"))

	_, err := s.LoadPage(ctx, "acme", "main", "home")
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))

	revs, err := s.Revisions(ctx, "acme", "main", "home", 10)
	require.NoError(t, err)
	assert.Empty(t, revs)

	err = s.DeletePage(ctx, "acme", "main", "home")
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestPruneRevisions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := testPage(`{"v":1}`)
	old.UpdatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, s.SavePage(ctx, old))
	require.NoError(t, s.SavePage(ctx, testPage(`{"v":2}`)))

	n, err := s.PruneRevisions(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revs, err := s.Revisions(ctx, "acme", "main", "home", 10)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.JSONEq(t, `{"v":2}`, string(revs[0].Document))

	// current page row is untouched by pruning
	_, err = s.LoadPage(ctx, "acme", "main", "home")
	require.NoError(t, err)
}

func TestPersistFuncRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := editor.NewSession(document.New(), editor.Options{
		Layout:  registry.DefaultLayouts()["landing"],
		Persist: PersistFunc(s, "acme", "main", "home"),
		Metadata: editor.Metadata{
			Title: "Landing",
			Slug:  "landing",
		},
	})

	_, err := sess.AddSection(registry.TypeHero)
	require.NoError(t, err)
	require.NoError(t, sess.Save(ctx))

	got, err := s.LoadPage(ctx, "acme", "main", "home")
	require.NoError(t, err)
	assert.Equal(t, "Landing", got.Title)
	assert.Contains(t, string(got.Document), `"hero"`)
}
