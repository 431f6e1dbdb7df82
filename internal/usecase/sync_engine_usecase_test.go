package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

type engineFixture struct {
	pages    *fakePages
	settings *fakeSettings
	client   *fakeClient
	leases   *fakeLeases
	engine   *syncEngineUseCase
}

func newEngineFixture(pages ...*entity.Page) *engineFixture {
	f := &engineFixture{
		pages:    newFakePages(pages...),
		settings: configured(),
		client:   newFakeClient(),
		leases:   newFakeLeases(),
	}
	f.engine = NewSyncEngine(f.pages, f.settings, f.client, staticSite("site-resolved"), f.leases, SyncOptions{}, zap.NewNop()).(*syncEngineUseCase)
	f.engine.now = func() time.Time { return time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC) }
	return f
}

func TestSyncPageIsIdempotent(t *testing.T) {
	f := newEngineFixture(publishedPage(7))
	ctx := context.Background()

	first, err := f.engine.SyncPage(ctx, 7)
	require.NoError(t, err)
	second, err := f.engine.SyncPage(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, entity.OutcomeSynced, first.Status)
	assert.Equal(t, entity.OutcomeSynced, second.Status)
	assert.Equal(t, first.RemoteID, second.RemoteID)
	assert.Equal(t, []int64{7, 7}, f.client.syncCalls)

	page := f.pages.get(7)
	assert.Equal(t, entity.SyncStatusSynced, page.Sync.Status)
	require.NotNil(t, page.Sync.LastSyncedAt)
	assert.Equal(t, time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC), *page.Sync.LastSyncedAt)
	assert.Equal(t, "site-1", f.client.lastSiteID)
}

func TestSyncPageGuards(t *testing.T) {
	draft := publishedPage(1)
	draft.Status = entity.PageStatusDraft

	post := publishedPage(2)
	post.Type = "post"

	revision := publishedPage(3)
	revision.Type = entity.PageTypeRevision

	autosave := publishedPage(4)
	autosave.ParentID = 2
	autosave.Slug = "2-autosave-v1"

	tests := []struct {
		name   string
		pageID int64
		reason string
	}{
		{"draft", 1, entity.ReasonNotPublished},
		{"unsupported type", 2, entity.ReasonWrongType},
		{"revision", 3, entity.ReasonRevision},
		{"autosave", 4, entity.ReasonRevision},
		{"missing page", 99, entity.ReasonNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(draft, post, revision, autosave)

			outcome, err := f.engine.SyncPage(context.Background(), tt.pageID)
			require.NoError(t, err)
			assert.Equal(t, entity.OutcomeSkipped, outcome.Status)
			assert.Equal(t, tt.reason, outcome.Reason)
			assert.False(t, outcome.Retryable)
			assert.Zero(t, f.client.syncCount())
			if tt.pageID != 99 {
				assert.Equal(t, entity.SyncStatusNever, f.pages.get(tt.pageID).Sync.Status)
			}
		})
	}
}

func TestSyncPageRecordsRemoteFailure(t *testing.T) {
	f := newEngineFixture(publishedPage(5))
	f.client.syncErr[5] = apperror.Transient("siloq.SyncPage", "Siloq API is unavailable", 503, nil)

	outcome, err := f.engine.SyncPage(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeFailed, outcome.Status)
	assert.True(t, outcome.Retryable)
	assert.Equal(t, string(apperror.KindRemoteTransient), outcome.ErrorKind)

	page := f.pages.get(5)
	assert.Equal(t, entity.SyncStatusFailed, page.Sync.Status)
	assert.Equal(t, "Siloq API is unavailable", page.Sync.LastError)
	assert.True(t, page.Sync.Retryable)
	assert.Nil(t, page.Sync.LastSyncedAt)
}

func TestSyncPageWithoutCredentials(t *testing.T) {
	f := newEngineFixture(publishedPage(5))
	f.settings.settings = entity.Settings{}

	outcome, err := f.engine.SyncPage(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeFailed, outcome.Status)
	assert.Equal(t, entity.ReasonNotConfigured, outcome.Reason)
	assert.Equal(t, string(apperror.KindValidation), outcome.ErrorKind)
	assert.False(t, outcome.Retryable)
	assert.Zero(t, f.client.syncCount())
	assert.Equal(t, entity.SyncStatusNever, f.pages.get(5).Sync.Status)
}

func TestSyncPageDummyScanOnly(t *testing.T) {
	f := newEngineFixture(publishedPage(5))
	f.settings.settings.DummyScanOnly = true

	outcome, err := f.engine.SyncPage(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeSkipped, outcome.Status)
	assert.Equal(t, entity.ReasonDummyScanOnly, outcome.Reason)
	assert.Zero(t, f.client.syncCount())
}

func TestSyncPageStoreFailureEscapes(t *testing.T) {
	f := newEngineFixture(publishedPage(5))
	f.pages.saveErr = errStoreDown

	_, err := f.engine.SyncPage(context.Background(), 5)
	require.ErrorIs(t, err, errStoreDown)
	assert.Zero(t, f.client.syncCount())
}

func TestHandlePageSaved(t *testing.T) {
	f := newEngineFixture(publishedPage(5))

	outcome, err := f.engine.HandlePageSaved(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonAutoSyncDisabled, outcome.Reason)
	assert.Zero(t, f.client.syncCount())

	f.settings.settings.AutoSync = true
	outcome, err = f.engine.HandlePageSaved(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeSynced, outcome.Status)
	assert.Equal(t, 1, f.client.syncCount())
}

func TestSyncAllPagesIsolatesFailures(t *testing.T) {
	var pages []*entity.Page
	for id := int64(1); id <= 5; id++ {
		pages = append(pages, publishedPage(id))
	}
	f := newEngineFixture(pages...)
	f.client.syncErr[3] = apperror.Permanent("siloq.SyncPage", "payload rejected", 422)

	summary, err := f.engine.SyncAllPages(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 5, summary.NextOffset)
	assert.False(t, summary.HasMore)

	require.Len(t, summary.Results, 5)
	for i, r := range summary.Results {
		assert.Equal(t, int64(i+1), r.PageID)
	}
	assert.Equal(t, entity.OutcomeFailed, summary.Results[2].Status)
	assert.False(t, summary.Results[2].Retryable)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, f.client.syncCalls)
	assert.Equal(t, 1, f.settings.loads)
}

func TestSyncAllPagesClampsBatchSize(t *testing.T) {
	var pages []*entity.Page
	for id := int64(1); id <= 60; id++ {
		pages = append(pages, publishedPage(id))
	}
	f := newEngineFixture(pages...)

	summary, err := f.engine.SyncAllPages(context.Background(), -3, 500)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, summary.BatchSize)
	assert.Equal(t, 0, summary.Offset)
	assert.Equal(t, 50, summary.Processed)
	assert.Equal(t, 50, summary.NextOffset)
	assert.Equal(t, 60, summary.Total)
	assert.True(t, summary.HasMore)
}

func TestClampBatchSize(t *testing.T) {
	assert.Equal(t, 50, ClampBatchSize(0))
	assert.Equal(t, 50, ClampBatchSize(-1))
	assert.Equal(t, 50, ClampBatchSize(201))
	assert.Equal(t, 1, ClampBatchSize(1))
	assert.Equal(t, 200, ClampBatchSize(200))
}

func TestSyncAllPagesRejectsConcurrentBatch(t *testing.T) {
	f := newEngineFixture(publishedPage(1))
	_, ok, err := f.leases.Acquire(context.Background(), batchLeaseName, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.engine.SyncAllPages(context.Background(), 0, 10)
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Zero(t, f.client.syncCount())
}

func TestSyncAllPagesReleasesLease(t *testing.T) {
	f := newEngineFixture(publishedPage(1))

	_, err := f.engine.SyncAllPages(context.Background(), 0, 10)
	require.NoError(t, err)
	_, err = f.engine.SyncAllPages(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, f.leases.held)
}

func TestSyncAllPagesRenewsLeasePerPage(t *testing.T) {
	var pages []*entity.Page
	for id := int64(1); id <= 4; id++ {
		pages = append(pages, publishedPage(id))
	}
	f := newEngineFixture(pages...)

	_, err := f.engine.SyncAllPages(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, f.leases.extends)
}

func TestSyncAllPagesStopsWhenLeaseIsLost(t *testing.T) {
	var pages []*entity.Page
	for id := int64(1); id <= 5; id++ {
		pages = append(pages, publishedPage(id))
	}
	f := newEngineFixture(pages...)
	f.leases.lostAfter = 2

	summary, err := f.engine.SyncAllPages(context.Background(), 0, 10)
	require.ErrorIs(t, err, apperror.ErrConflict)
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, []int64{1, 2}, f.client.syncCalls)
	assert.Equal(t, entity.SyncStatusNever, f.pages.get(3).Sync.Status)
}

func TestSyncOutdatedPages(t *testing.T) {
	fresh := publishedPage(1)
	recent := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	fresh.Sync = entity.SyncState{Status: entity.SyncStatusSynced, LastSyncedAt: &recent}

	stale := publishedPage(2)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stale.Sync = entity.SyncState{Status: entity.SyncStatusSynced, LastSyncedAt: &old}

	never := publishedPage(3)

	f := newEngineFixture(fresh, stale, never)

	summary, err := f.engine.SyncOutdatedPages(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, []int64{2, 3}, f.client.syncCalls)
	assert.False(t, summary.HasMore)
}

func TestBatchCoverageProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60
	properties := gopter.NewProperties(parameters)

	properties.Property("walking batches syncs every published page exactly once", prop.ForAll(
		func(batchSize, published, drafts int) bool {
			var pages []*entity.Page
			id := int64(1)
			for i := 0; i < published; i++ {
				pages = append(pages, publishedPage(id))
				id++
			}
			for i := 0; i < drafts; i++ {
				p := publishedPage(id)
				p.Status = entity.PageStatusDraft
				pages = append(pages, p)
				id++
			}
			f := newEngineFixture(pages...)

			offset := 0
			for {
				summary, err := f.engine.SyncAllPages(context.Background(), offset, batchSize)
				if err != nil || summary.Processed > batchSize {
					return false
				}
				offset = summary.NextOffset
				if !summary.HasMore {
					break
				}
			}

			seen := map[int64]int{}
			for _, pageID := range f.client.syncCalls {
				seen[pageID]++
			}
			if len(seen) != published || len(f.client.syncCalls) != published {
				return false
			}
			for pageID, n := range seen {
				if n != 1 || pageID > int64(published) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, MaxBatchSize),
		gen.IntRange(0, 450),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
