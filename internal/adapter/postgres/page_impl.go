package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

// PageRepoImpl provides a concrete implementation for the PageRepository interface using PostgreSQL.
type PageRepoImpl struct {
	db DB
}

// NewPageRepo creates a new instance of PageRepoImpl.
func NewPageRepo(db DB) *PageRepoImpl {
	return &PageRepoImpl{db: db}
}

// selectPages pivots the Siloq annotations out of page_meta next to each page row.
const selectPages = `
	SELECT p.id, p.post_type, p.title, p.slug, p.url, p.status, p.content, p.parent_id, p.created_at, p.updated_at,
		COALESCE(MAX(m.meta_value) FILTER (WHERE m.meta_key = '` + entity.MetaSyncStatus + `'), ''),
		COALESCE(MAX(m.meta_value) FILTER (WHERE m.meta_key = '` + entity.MetaLastSynced + `'), ''),
		COALESCE(MAX(m.meta_value) FILTER (WHERE m.meta_key = '` + entity.MetaHasSchema + `'), ''),
		COALESCE(MAX(m.meta_value) FILTER (WHERE m.meta_key = '` + entity.MetaGeneratedFromJobID + `'), ''),
		COALESCE(MAX(m.meta_value) FILTER (WHERE m.meta_key = '` + entity.MetaSyncError + `'), ''),
		COALESCE(MAX(m.meta_value) FILTER (WHERE m.meta_key = '` + entity.MetaSyncRetryable + `'), '')
	FROM pages p
	LEFT JOIN page_meta m ON m.page_id = p.id`

// FindByID retrieves a page and its annotations.
func (r *PageRepoImpl) FindByID(ctx context.Context, id int64) (*entity.Page, error) {
	query := selectPages + `
	WHERE p.id = $1
	GROUP BY p.id;`

	page, err := scanPage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.New(apperror.KindNotFound, "pages.FindByID", fmt.Sprintf("page %d not found", id))
		}
		return nil, fmt.Errorf("find page %d: %w", id, err)
	}
	return page, nil
}

// ListPublished returns one slice of published pages in id order.
func (r *PageRepoImpl) ListPublished(ctx context.Context, types []string, offset, limit int) ([]*entity.Page, error) {
	query := selectPages + `
	WHERE p.status = 'publish' AND p.post_type = ANY($1)
	GROUP BY p.id
	ORDER BY p.id ASC
	OFFSET $2 LIMIT $3;`

	rows, err := r.db.Query(ctx, query, types, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list published pages: %w", err)
	}
	return collectPages(rows)
}

// CountPublished counts published pages of the given types.
func (r *PageRepoImpl) CountPublished(ctx context.Context, types []string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM pages WHERE status = 'publish' AND post_type = ANY($1);`,
		types,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count published pages: %w", err)
	}
	return n, nil
}

// ListOutdated returns published pages never synced or last synced before the cutoff.
func (r *PageRepoImpl) ListOutdated(ctx context.Context, types []string, before time.Time, limit int) ([]*entity.Page, error) {
	query := selectPages + `
	WHERE p.status = 'publish' AND p.post_type = ANY($1)
		AND NOT EXISTS (
			SELECT 1 FROM page_meta s
			WHERE s.page_id = p.id AND s.meta_key = '` + entity.MetaLastSynced + `'
				AND CASE WHEN s.meta_key = '` + entity.MetaLastSynced + `' AND s.meta_value <> ''
					THEN s.meta_value::timestamptz END >= $2
		)
	GROUP BY p.id
	ORDER BY p.id ASC
	LIMIT $3;`

	rows, err := r.db.Query(ctx, query, types, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list outdated pages: %w", err)
	}
	return collectPages(rows)
}

// UpdateContent overwrites the title and body of a page.
func (r *PageRepoImpl) UpdateContent(ctx context.Context, id int64, title, content string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE pages SET title = $2, content = $3, updated_at = NOW() WHERE id = $1;`,
		id, title, content,
	)
	if err != nil {
		return fmt.Errorf("update page %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.KindNotFound, "pages.UpdateContent", fmt.Sprintf("page %d not found", id))
	}
	return nil
}

// CreateDraft inserts a new page and its annotations in one transaction.
func (r *PageRepoImpl) CreateDraft(ctx context.Context, page *entity.Page) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO pages (post_type, title, slug, url, status, content, parent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id;`,
		page.Type, page.Title, page.Slug, page.URL, entity.PageStatusDraft, page.Content, page.ParentID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert draft page: %w", err)
	}

	if err := writeSyncState(ctx, tx, id, page.Sync); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit draft page: %w", err)
	}
	return id, nil
}

// SaveSyncState writes every annotation of a page within a single transaction.
func (r *PageRepoImpl) SaveSyncState(ctx context.Context, id int64, state entity.SyncState) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := writeSyncState(ctx, tx, id, state); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func writeSyncState(ctx context.Context, tx pgx.Tx, id int64, state entity.SyncState) error {
	status := state.Status
	if status == "" {
		status = entity.SyncStatusNever
	}
	values := []struct {
		key, value string
	}{
		{entity.MetaSyncStatus, string(status)},
		{entity.MetaHasSchema, strconv.FormatBool(state.HasSchema)},
		{entity.MetaGeneratedFromJobID, state.GeneratedFromJobID},
		{entity.MetaSyncError, state.LastError},
		{entity.MetaSyncRetryable, strconv.FormatBool(state.Retryable)},
	}
	if state.LastSyncedAt != nil {
		values = append(values, struct{ key, value string }{entity.MetaLastSynced, state.LastSyncedAt.UTC().Format(time.RFC3339Nano)})
	} else {
		if _, err := tx.Exec(ctx,
			`DELETE FROM page_meta WHERE page_id = $1 AND meta_key = $2;`,
			id, entity.MetaLastSynced,
		); err != nil {
			return fmt.Errorf("clear last synced for page %d: %w", id, err)
		}
	}

	for _, v := range values {
		if _, err := tx.Exec(ctx,
			`INSERT INTO page_meta (page_id, meta_key, meta_value) VALUES ($1, $2, $3)
			 ON CONFLICT (page_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value;`,
			id, v.key, v.value,
		); err != nil {
			return fmt.Errorf("write %s for page %d: %w", v.key, id, err)
		}
	}
	return nil
}

func collectPages(rows pgx.Rows) ([]*entity.Page, error) {
	defer rows.Close()

	var pages []*entity.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

func scanPage(row pgx.Row) (*entity.Page, error) {
	var p entity.Page
	var status, lastSynced, hasSchema, jobID, errMsg, retry string
	err := row.Scan(
		&p.ID,
		&p.Type,
		&p.Title,
		&p.Slug,
		&p.URL,
		&p.Status,
		&p.Content,
		&p.ParentID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&status,
		&lastSynced,
		&hasSchema,
		&jobID,
		&errMsg,
		&retry,
	)
	if err != nil {
		return nil, err
	}

	p.Sync = entity.SyncState{
		Status:             entity.SyncStatusNever,
		HasSchema:          hasSchema == "true",
		GeneratedFromJobID: jobID,
		LastError:          errMsg,
		Retryable:          retry == "true",
	}
	if status != "" {
		p.Sync.Status = entity.SyncStatus(status)
	}
	if lastSynced != "" {
		t, err := time.Parse(time.RFC3339Nano, lastSynced)
		if err != nil {
			return nil, fmt.Errorf("page %d has corrupt %s %q: %w", p.ID, entity.MetaLastSynced, lastSynced, err)
		}
		p.Sync.LastSyncedAt = &t
	}
	return &p, nil
}
