package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

// BackupRepoImpl stores content snapshots in the siloq_backups table.
type BackupRepoImpl struct {
	db DB
}

// NewBackupRepo creates a new instance of BackupRepoImpl.
func NewBackupRepo(db DB) *BackupRepoImpl {
	return &BackupRepoImpl{db: db}
}

// Save appends a backup row.
func (r *BackupRepoImpl) Save(ctx context.Context, b *entity.Backup) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO siloq_backups (page_id, title, content_snapshot, source_job_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at;`,
		b.PageID, b.Title, b.ContentSnapshot, b.SourceJobID,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("save backup for page %d: %w", b.PageID, err)
	}
	return nil
}

// Latest returns the most recent backup of a page.
func (r *BackupRepoImpl) Latest(ctx context.Context, pageID int64) (*entity.Backup, error) {
	var b entity.Backup
	err := r.db.QueryRow(ctx,
		`SELECT id, page_id, title, content_snapshot, source_job_id, created_at
		 FROM siloq_backups
		 WHERE page_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1;`,
		pageID,
	).Scan(&b.ID, &b.PageID, &b.Title, &b.ContentSnapshot, &b.SourceJobID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.New(apperror.KindNoBackup, "backups.Latest", fmt.Sprintf("no backup available for page %d", pageID))
		}
		return nil, fmt.Errorf("latest backup for page %d: %w", pageID, err)
	}
	return &b, nil
}

// ListByPage returns every backup of a page, newest first.
func (r *BackupRepoImpl) ListByPage(ctx context.Context, pageID int64) ([]*entity.Backup, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, page_id, title, content_snapshot, source_job_id, created_at
		 FROM siloq_backups
		 WHERE page_id = $1
		 ORDER BY created_at DESC, id DESC;`,
		pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups for page %d: %w", pageID, err)
	}
	defer rows.Close()

	var backups []*entity.Backup
	for rows.Next() {
		var b entity.Backup
		if err := rows.Scan(&b.ID, &b.PageID, &b.Title, &b.ContentSnapshot, &b.SourceJobID, &b.CreatedAt); err != nil {
			return nil, err
		}
		backups = append(backups, &b)
	}
	return backups, rows.Err()
}

// Delete removes a backup row.
func (r *BackupRepoImpl) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM siloq_backups WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete backup %d: %w", id, err)
	}
	return nil
}

// Prune keeps the newest keep backups of a page. keep <= 0 disables pruning.
func (r *BackupRepoImpl) Prune(ctx context.Context, pageID int64, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM siloq_backups
		 WHERE page_id = $1 AND id NOT IN (
			SELECT id FROM siloq_backups
			WHERE page_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		 );`,
		pageID, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune backups for page %d: %w", pageID, err)
	}
	return tag.RowsAffected(), nil
}
