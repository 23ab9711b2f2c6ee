package store

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/editor"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// PersistFunc binds a store to one page and adapts it to the editor's
// persistence contract.
func PersistFunc(s Store, tenant, site, pageID string) editor.PersistFunc {
	return func(ctx context.Context, doc *document.Document, meta editor.Metadata) error {
		data, err := doc.ToJSON()
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryStorage, "serialize document").
				WithContext("page", pageID).Build()
		}
		return s.SavePage(ctx, Page{
			Tenant:    tenant,
			Site:      site,
			PageID:    pageID,
			Title:     meta.Title,
			Slug:      meta.Slug,
			Published: meta.Published,
			Document:  data,
			UpdatedAt: time.Now(),
		})
	}
}
