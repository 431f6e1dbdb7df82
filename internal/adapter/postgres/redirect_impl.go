package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

// RedirectRepoImpl is the append-only siloq_redirects table.
type RedirectRepoImpl struct {
	db DB
}

// NewRedirectRepo creates a new instance of RedirectRepoImpl.
func NewRedirectRepo(db DB) *RedirectRepoImpl {
	return &RedirectRepoImpl{db: db}
}

// Save appends a redirect. Corrections are new rows, never updates.
func (r *RedirectRepoImpl) Save(ctx context.Context, rd *entity.Redirect) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO siloq_redirects (source_path, target_path, status_code)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at;`,
		rd.SourcePath, rd.TargetPath, rd.StatusCode,
	).Scan(&rd.ID, &rd.CreatedAt)
	if err != nil {
		return fmt.Errorf("save redirect %s: %w", rd.SourcePath, err)
	}
	return nil
}

// FindLatestBySource returns the newest redirect for a source path.
func (r *RedirectRepoImpl) FindLatestBySource(ctx context.Context, sourcePath string) (*entity.Redirect, error) {
	var rd entity.Redirect
	err := r.db.QueryRow(ctx,
		`SELECT id, source_path, target_path, status_code, created_at
		 FROM siloq_redirects
		 WHERE source_path = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1;`,
		sourcePath,
	).Scan(&rd.ID, &rd.SourcePath, &rd.TargetPath, &rd.StatusCode, &rd.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.New(apperror.KindNotFound, "redirects.FindLatestBySource", "no redirect for "+sourcePath)
		}
		return nil, fmt.Errorf("find redirect %s: %w", sourcePath, err)
	}
	return &rd, nil
}

// List returns the newest redirects first.
func (r *RedirectRepoImpl) List(ctx context.Context, limit int) ([]*entity.Redirect, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, source_path, target_path, status_code, created_at
		 FROM siloq_redirects
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1;`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list redirects: %w", err)
	}
	defer rows.Close()

	var redirects []*entity.Redirect
	for rows.Next() {
		var rd entity.Redirect
		if err := rows.Scan(&rd.ID, &rd.SourcePath, &rd.TargetPath, &rd.StatusCode, &rd.CreatedAt); err != nil {
			return nil, err
		}
		redirects = append(redirects, &rd)
	}
	return redirects, rows.Err()
}
