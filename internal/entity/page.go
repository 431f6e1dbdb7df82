package entity

import (
	"strings"
	"time"
)

// Page statuses and types as stored by the host CMS.
const (
	PageStatusPublish = "publish"
	PageStatusDraft   = "draft"

	PageTypePage     = "page"
	PageTypeRevision = "revision"
)

// Page mirrors a row of the `pages` table plus its Siloq annotations from `page_meta`.
type Page struct {
	ID        int64
	Type      string
	Title     string
	Slug      string
	URL       string
	Status    string
	Content   string
	ParentID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Sync      SyncState
}

// IsPublished reports whether the page is publicly visible.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublish
}

// IsRevision reports whether the page is a revision or an autosave of another page.
func (p *Page) IsRevision() bool {
	if p.Type == PageTypeRevision {
		return true
	}
	return p.ParentID != 0 && strings.Contains(p.Slug, "-autosave-")
}
