package repository

import (
	"context"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

// RedirectRepository is the append-only redirect table.
type RedirectRepository interface {
	Save(ctx context.Context, redirect *entity.Redirect) error
	// FindLatestBySource returns the newest redirect for a source path, or an apperror of kind not_found.
	FindLatestBySource(ctx context.Context, sourcePath string) (*entity.Redirect, error)
	List(ctx context.Context, limit int) ([]*entity.Redirect, error)
}
