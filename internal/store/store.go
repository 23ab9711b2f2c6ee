// Package store persists pages and their saved revisions in SQLite.
package store

import (
	"context"
	"time"
)

// Page is a persisted page record. Document holds the serialized section
// map exactly as the editor saved it.
type Page struct {
	Tenant    string
	Site      string
	PageID    string
	Title     string
	Slug      string
	Published bool
	Document  []byte
	UpdatedAt time.Time
}

// Revision is one append-only snapshot of a page, written on every save.
type Revision struct {
	ID       int64
	Tenant   string
	Site     string
	PageID   string
	Title    string
	Document []byte
	SavedAt  time.Time
}

// Store is the persistence boundary for the editor.
type Store interface {
	SavePage(ctx context.Context, page Page) error
	LoadPage(ctx context.Context, tenant, site, pageID string) (*Page, error)
	ListPages(ctx context.Context, tenant, site string) ([]Page, error)
	DeletePage(ctx context.Context, tenant, site, pageID string) error
	Revisions(ctx context.Context, tenant, site, pageID string, limit int) ([]Revision, error)
	Revision(ctx context.Context, id int64) (*Revision, error)
	PruneRevisions(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}
