package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

func TestBackupRepo_Save(t *testing.T) {
	mock := newMock(t)
	repo := NewBackupRepo(mock)
	created := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO siloq_backups`).
		WithArgs(int64(4), "Home", "A", "job-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), created))

	b := &entity.Backup{PageID: 4, Title: "Home", ContentSnapshot: "A", SourceJobID: "job-1"}
	require.NoError(t, repo.Save(context.Background(), b))
	assert.Equal(t, int64(9), b.ID)
	assert.Equal(t, created, b.CreatedAt)
}

func TestBackupRepo_LatestNone(t *testing.T) {
	mock := newMock(t)
	repo := NewBackupRepo(mock)

	mock.ExpectQuery(`FROM siloq_backups`).WithArgs(int64(4)).WillReturnError(pgx.ErrNoRows)

	_, err := repo.Latest(context.Background(), 4)
	assert.True(t, errors.Is(err, apperror.ErrNoBackup))
}

func TestBackupRepo_ListByPage(t *testing.T) {
	mock := newMock(t)
	repo := NewBackupRepo(mock)
	cols := []string{"id", "page_id", "title", "content_snapshot", "source_job_id", "created_at"}

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(3), int64(4), "Home", "B", "job-2", time.Now()).
			AddRow(int64(2), int64(4), "Home", "A", "job-1", time.Now().Add(-time.Hour)))

	backups, err := repo.ListByPage(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, "B", backups[0].ContentSnapshot)
}

func TestBackupRepo_Prune(t *testing.T) {
	mock := newMock(t)
	repo := NewBackupRepo(mock)

	mock.ExpectExec(`DELETE FROM siloq_backups`).
		WithArgs(int64(4), 5).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := repo.Prune(context.Background(), 4, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.Prune(context.Background(), 4, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackupRepo_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewBackupRepo(mock)

	mock.ExpectExec(`DELETE FROM siloq_backups WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
