package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates the page database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "open sqlite database").
			WithContext("path", dbPath).Build()
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "initialize schema").Build()
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		tenant TEXT NOT NULL,
		site TEXT NOT NULL,
		page_id TEXT NOT NULL,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		published INTEGER NOT NULL DEFAULT 0,
		document BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (tenant, site, page_id)
	);
	CREATE TABLE IF NOT EXISTS revisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant TEXT NOT NULL,
		site TEXT NOT NULL,
		page_id TEXT NOT NULL,
		title TEXT NOT NULL,
		document BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_revisions_page ON revisions(tenant, site, page_id);
	CREATE INDEX IF NOT EXISTS idx_revisions_saved_at ON revisions(saved_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SavePage upserts the current page row and appends a revision in one
// transaction. A save is only durable once both rows are written.
func (s *SQLiteStore) SavePage(ctx context.Context, page Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ferrors.StorageError("begin save transaction").WithContext("cause", err.Error()).Build()
	}
	defer func() { _ = tx.Rollback() }()

	savedAt := page.UpdatedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pages (tenant, site, page_id, title, slug, published, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant, site, page_id) DO UPDATE SET
			title = excluded.title,
			slug = excluded.slug,
			published = excluded.published,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		page.Tenant, page.Site, page.PageID, page.Title, page.Slug,
		boolToInt(page.Published), page.Document, savedAt.Unix(),
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "upsert page").
			WithContext("page", page.PageID).Retryable().Build()
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO revisions (tenant, site, page_id, title, document, saved_at) VALUES (?, ?, ?, ?, ?, ?)",
		page.Tenant, page.Site, page.PageID, page.Title, page.Document, savedAt.Unix(),
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "append revision").
			WithContext("page", page.PageID).Retryable().Build()
	}

	if err := tx.Commit(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "commit save").
			WithContext("page", page.PageID).Retryable().Build()
	}
	return nil
}

// LoadPage returns the current state of a page.
func (s *SQLiteStore) LoadPage(ctx context.Context, tenant, site, pageID string) (*Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT tenant, site, page_id, title, slug, published, document, updated_at FROM pages WHERE tenant = ? AND site = ? AND page_id = ?",
		tenant, site, pageID,
	)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ferrors.NewError(ferrors.CategoryNotFound, "page not found").
			WithContext("tenant", tenant).
			WithContext("site", site).
			WithContext("page", pageID).Build()
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "load page").Build()
	}
	return page, nil
}

// ListPages returns all pages for a site ordered by page id.
func (s *SQLiteStore) ListPages(ctx context.Context, tenant, site string) ([]Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT tenant, site, page_id, title, slug, published, document, updated_at FROM pages WHERE tenant = ? AND site = ? ORDER BY page_id",
		tenant, site,
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "list pages").Build()
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "scan page").Build()
		}
		pages = append(pages, *page)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "iterate pages").Build()
	}
	return pages, nil
}

// DeletePage removes a page and its revision history.
func (s *SQLiteStore) DeletePage(ctx context.Context, tenant, site, pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ferrors.StorageError("begin delete transaction").WithContext("cause", err.Error()).Build()
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM pages WHERE tenant = ? AND site = ? AND page_id = ?", tenant, site, pageID)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "delete page").Build()
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ferrors.NewError(ferrors.CategoryNotFound, "page not found").
			WithContext("page", pageID).Build()
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM revisions WHERE tenant = ? AND site = ? AND page_id = ?", tenant, site, pageID); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "delete revisions").Build()
	}
	return tx.Commit()
}

// Revisions returns the newest revisions for a page, most recent first.
func (s *SQLiteStore) Revisions(ctx context.Context, tenant, site, pageID string, limit int) ([]Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, tenant, site, page_id, title, document, saved_at FROM revisions WHERE tenant = ? AND site = ? AND page_id = ? ORDER BY id DESC LIMIT ?",
		tenant, site, pageID, limit,
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "query revisions").Build()
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		var savedAt int64
		if err := rows.Scan(&r.ID, &r.Tenant, &r.Site, &r.PageID, &r.Title, &r.Document, &savedAt); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "scan revision").Build()
		}
		r.SavedAt = time.Unix(savedAt, 0)
		revs = append(revs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "iterate revisions").Build()
	}
	return revs, nil
}

// Revision returns one revision by id.
func (s *SQLiteStore) Revision(ctx context.Context, id int64) (*Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r Revision
	var savedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, tenant, site, page_id, title, document, saved_at FROM revisions WHERE id = ?", id,
	).Scan(&r.ID, &r.Tenant, &r.Site, &r.PageID, &r.Title, &r.Document, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ferrors.NewError(ferrors.CategoryNotFound, "revision not found").
			WithContext("revision", id).Build()
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "load revision").Build()
	}
	r.SavedAt = time.Unix(savedAt, 0)
	return &r, nil
}

// PruneRevisions deletes revisions saved before the cutoff and reports how
// many were removed.
func (s *SQLiteStore) PruneRevisions(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM revisions WHERE saved_at < ?", olderThan.Unix())
	if err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryStorage, "prune revisions").Retryable().Build()
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryStorage, "count pruned revisions").Build()
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (*Page, error) {
	var p Page
	var published int
	var updatedAt int64
	if err := row.Scan(&p.Tenant, &p.Site, &p.PageID, &p.Title, &p.Slug, &published, &p.Document, &updatedAt); err != nil {
		return nil, err
	}
	p.Published = published != 0
	p.UpdatedAt = time.Unix(updatedAt, 0)
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
