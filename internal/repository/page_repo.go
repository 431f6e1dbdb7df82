package repository

import (
	"context"
	"time"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

// PageRepository is the read/annotate view over the host CMS page store.
type PageRepository interface {
	// FindByID returns the page with its sync annotations, or an apperror of kind not_found.
	FindByID(ctx context.Context, id int64) (*entity.Page, error)
	// ListPublished returns published pages of the given types ordered by id ascending.
	ListPublished(ctx context.Context, types []string, offset, limit int) ([]*entity.Page, error)
	// CountPublished counts published pages of the given types.
	CountPublished(ctx context.Context, types []string) (int, error)
	// ListOutdated returns published pages never synced or last synced before the cutoff.
	ListOutdated(ctx context.Context, types []string, before time.Time, limit int) ([]*entity.Page, error)
	// UpdateContent overwrites the title and body of a page.
	UpdateContent(ctx context.Context, id int64, title, content string) error
	// CreateDraft inserts a new page and returns its id.
	CreateDraft(ctx context.Context, page *entity.Page) (int64, error)
	// SaveSyncState writes all sync annotations of a page.
	SaveSyncState(ctx context.Context, id int64, state entity.SyncState) error
}
