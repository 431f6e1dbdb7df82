package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/config"
)

// pagedSync serves total pages in id order.
type pagedSync struct {
	total   int
	offsets []int
}

func (s *pagedSync) SyncPage(ctx context.Context, pageID int64) (*entity.SyncOutcome, error) {
	return &entity.SyncOutcome{PageID: pageID, Status: entity.OutcomeSynced}, nil
}

func (s *pagedSync) SyncAllPages(ctx context.Context, offset, batchSize int) (*entity.BatchSummary, error) {
	s.offsets = append(s.offsets, offset)
	summary := &entity.BatchSummary{Offset: offset, BatchSize: batchSize, Total: s.total}
	for i := offset; i < s.total && i < offset+batchSize; i++ {
		summary.Add(&entity.SyncOutcome{PageID: int64(i + 1), Status: entity.OutcomeSynced})
	}
	summary.NextOffset = offset + summary.Processed
	summary.HasMore = summary.NextOffset < s.total
	return summary, nil
}

func (s *pagedSync) SyncOutdatedPages(ctx context.Context, limit int) (*entity.BatchSummary, error) {
	return &entity.BatchSummary{BatchSize: limit}, nil
}

func (s *pagedSync) HandlePageSaved(ctx context.Context, pageID int64) (*entity.SyncOutcome, error) {
	return s.SyncPage(ctx, pageID)
}

func run(t *testing.T, sync *pagedSync, args ...string) (string, int, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	builds := 0
	cmd := newRootCommand(func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
		builds++
		return &App{Sync: sync}, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), builds, err
}

func TestSyncPageCommand(t *testing.T) {
	out, _, err := run(t, &pagedSync{}, "sync", "page", "7")
	require.NoError(t, err)
	assert.Equal(t, "page 7: synced\n", out)
}

func TestSyncPageRejectsBadID(t *testing.T) {
	_, builds, err := run(t, &pagedSync{}, "sync", "page", "abc")
	require.Error(t, err)
	assert.Zero(t, builds)
}

func TestSyncAllWalksEveryBatch(t *testing.T) {
	sync := &pagedSync{total: 5}
	out, _, err := run(t, sync, "--format", "json", "sync", "all", "--batch-size", "2")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, sync.offsets)

	var total entity.BatchSummary
	require.NoError(t, json.Unmarshal([]byte(out), &total))
	assert.Equal(t, 5, total.Processed)
	assert.Equal(t, 5, total.Succeeded)
	assert.Equal(t, 5, total.NextOffset)
}

func TestInvalidFormat(t *testing.T) {
	_, builds, err := run(t, &pagedSync{}, "--format", "xml", "sync", "page", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Zero(t, builds)
}
