package repository

import (
	"context"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

// BackupRepository stores content snapshots taken before an import overwrites a page.
type BackupRepository interface {
	// Save appends a backup and fills in its ID and CreatedAt.
	Save(ctx context.Context, backup *entity.Backup) error
	// Latest returns the most recent backup of a page, or an apperror of kind no_backup_available.
	Latest(ctx context.Context, pageID int64) (*entity.Backup, error)
	// ListByPage returns every backup of a page, newest first.
	ListByPage(ctx context.Context, pageID int64) ([]*entity.Backup, error)
	// Delete removes a backup after it has been restored.
	Delete(ctx context.Context, id int64) error
	// Prune keeps only the newest keep backups of a page and returns how many were removed.
	Prune(ctx context.Context, pageID int64, keep int) (int64, error)
}
