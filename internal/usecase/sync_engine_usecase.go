package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/content"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/repository"
	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/metrics"
	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/utils"
)

const (
	DefaultBatchSize = 50
	MaxBatchSize     = 200

	batchLeaseName = "batch-sync"
)

// SyncEngine pushes pages to Siloq and records the outcome on each page.
type SyncEngine interface {
	SyncPage(ctx context.Context, pageID int64) (*entity.SyncOutcome, error)
	SyncAllPages(ctx context.Context, offset, batchSize int) (*entity.BatchSummary, error)
	SyncOutdatedPages(ctx context.Context, limit int) (*entity.BatchSummary, error)
	// HandlePageSaved is the save hook; it syncs only when auto-sync is enabled.
	HandlePageSaved(ctx context.Context, pageID int64) (*entity.SyncOutcome, error)
}

// SyncOptions configures the engine.
type SyncOptions struct {
	PostTypes  []string
	StaleAfter time.Duration
	LeaseTTL   time.Duration
}

type syncEngineUseCase struct {
	pages    repository.PageRepository
	settings repository.SettingsRepository
	client   repository.SiloqClient
	sites    SiteResolver
	leases   repository.LeaseRepository
	opts     SyncOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewSyncEngine creates the sync use case. leases may be nil, in which case
// concurrent batch syncs are not serialized.
func NewSyncEngine(
	pages repository.PageRepository,
	settings repository.SettingsRepository,
	client repository.SiloqClient,
	sites SiteResolver,
	leases repository.LeaseRepository,
	opts SyncOptions,
	logger *zap.Logger,
) SyncEngine {
	if len(opts.PostTypes) == 0 {
		opts.PostTypes = []string{entity.PageTypePage}
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 7 * 24 * time.Hour
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 5 * time.Minute
	}
	return &syncEngineUseCase{
		pages:    pages,
		settings: settings,
		client:   client,
		sites:    sites,
		leases:   leases,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// ClampBatchSize returns size if it lies in [1, MaxBatchSize], otherwise DefaultBatchSize.
func ClampBatchSize(size int) int {
	if size < 1 || size > MaxBatchSize {
		return DefaultBatchSize
	}
	return size
}

// syncRun carries what one external invocation reads once: settings and the lazily resolved site id.
type syncRun struct {
	settings entity.Settings
	siteID   string
	siteErr  error
	resolved bool
}

func (uc *syncEngineUseCase) newRun(ctx context.Context) (*syncRun, error) {
	s, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &syncRun{settings: s}, nil
}

func (r *syncRun) site(ctx context.Context, resolver SiteResolver) (string, error) {
	if !r.resolved {
		r.siteID, r.siteErr = resolver.ResolveSiteID(ctx, r.settings)
		r.resolved = true
	}
	return r.siteID, r.siteErr
}

func (uc *syncEngineUseCase) SyncPage(ctx context.Context, pageID int64) (*entity.SyncOutcome, error) {
	run, err := uc.newRun(ctx)
	if err != nil {
		return nil, err
	}
	return uc.syncByID(ctx, run, pageID)
}

func (uc *syncEngineUseCase) HandlePageSaved(ctx context.Context, pageID int64) (*entity.SyncOutcome, error) {
	run, err := uc.newRun(ctx)
	if err != nil {
		return nil, err
	}
	if !run.settings.AutoSync {
		return uc.skip(pageID, entity.ReasonAutoSyncDisabled, "auto-sync is disabled"), nil
	}
	return uc.syncByID(ctx, run, pageID)
}

func (uc *syncEngineUseCase) SyncAllPages(ctx context.Context, offset, batchSize int) (*entity.BatchSummary, error) {
	if offset < 0 {
		offset = 0
	}
	batchSize = ClampBatchSize(batchSize)

	lease, err := uc.acquireLease(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.release()

	run, err := uc.newRun(ctx)
	if err != nil {
		return nil, err
	}

	total, err := uc.pages.CountPublished(ctx, uc.opts.PostTypes)
	if err != nil {
		return nil, err
	}
	pages, err := uc.pages.ListPublished(ctx, uc.opts.PostTypes, offset, batchSize)
	if err != nil {
		return nil, err
	}

	summary := &entity.BatchSummary{
		Offset:    offset,
		BatchSize: batchSize,
		Total:     total,
		Results:   make([]*entity.SyncOutcome, 0, len(pages)),
	}
	if err := uc.syncEach(ctx, run, lease, pages, summary); err != nil {
		return summary, err
	}
	summary.NextOffset = offset + len(pages)
	summary.HasMore = summary.NextOffset < total

	uc.logger.Info("batch sync finished",
		zap.Int("offset", offset),
		zap.Int("batch_size", batchSize),
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (uc *syncEngineUseCase) SyncOutdatedPages(ctx context.Context, limit int) (*entity.BatchSummary, error) {
	limit = ClampBatchSize(limit)

	lease, err := uc.acquireLease(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.release()

	run, err := uc.newRun(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := uc.now().Add(-uc.opts.StaleAfter)
	pages, err := uc.pages.ListOutdated(ctx, uc.opts.PostTypes, cutoff, limit)
	if err != nil {
		return nil, err
	}

	summary := &entity.BatchSummary{
		BatchSize: limit,
		Total:     len(pages),
		Results:   make([]*entity.SyncOutcome, 0, len(pages)),
	}
	if err := uc.syncEach(ctx, run, lease, pages, summary); err != nil {
		return summary, err
	}
	summary.NextOffset = len(pages)
	summary.HasMore = len(pages) == limit
	return summary, nil
}

// syncEach processes pages in order, renewing the lease before each page.
// Per-page failures are recorded in the summary; only local store errors and
// a lost lease abort the batch.
func (uc *syncEngineUseCase) syncEach(ctx context.Context, run *syncRun, lease *batchLease, pages []*entity.Page, summary *entity.BatchSummary) error {
	for _, page := range pages {
		if err := lease.renew(ctx); err != nil {
			uc.logger.Error("batch sync aborted", zap.Int64("page_id", page.ID), zap.Error(err))
			return err
		}
		outcome, err := uc.syncLoaded(ctx, run, page)
		if err != nil {
			uc.logger.Error("batch sync aborted", zap.Int64("page_id", page.ID), zap.Error(err))
			return err
		}
		summary.Add(outcome)
	}
	return nil
}

// batchLease is the site-wide batch lease held for one SyncAllPages or
// SyncOutdatedPages call. A nil *batchLease means leasing is disabled.
type batchLease struct {
	repo   repository.LeaseRepository
	token  string
	ttl    time.Duration
	logger *zap.Logger
}

func (uc *syncEngineUseCase) acquireLease(ctx context.Context) (*batchLease, error) {
	if uc.leases == nil {
		return nil, nil
	}
	token, ok, err := uc.leases.Acquire(ctx, batchLeaseName, uc.opts.LeaseTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire batch lease: %w", err)
	}
	if !ok {
		return nil, apperror.New(apperror.KindConflict, "sync.batch", "another site-wide sync is already running")
	}
	return &batchLease{repo: uc.leases, token: token, ttl: uc.opts.LeaseTTL, logger: uc.logger}, nil
}

// renew pushes the lease expiry forward so a long batch keeps it.
func (l *batchLease) renew(ctx context.Context) error {
	if l == nil {
		return nil
	}
	ok, err := l.repo.Extend(ctx, batchLeaseName, l.token, l.ttl)
	if err != nil {
		return fmt.Errorf("renew batch lease: %w", err)
	}
	if !ok {
		return apperror.New(apperror.KindConflict, "sync.batch", "batch lease expired and was taken by another sync")
	}
	return nil
}

func (l *batchLease) release() {
	if l == nil {
		return
	}
	// Released on a fresh context so a cancelled request still frees the lease.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.repo.Release(ctx, batchLeaseName, l.token); err != nil {
		l.logger.Warn("failed to release batch lease", zap.Error(err))
	}
}

func (uc *syncEngineUseCase) syncByID(ctx context.Context, run *syncRun, pageID int64) (*entity.SyncOutcome, error) {
	page, err := uc.pages.FindByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return uc.skip(pageID, entity.ReasonNotFound, fmt.Sprintf("page %d does not exist", pageID)), nil
		}
		return nil, err
	}
	return uc.syncLoaded(ctx, run, page)
}

func (uc *syncEngineUseCase) syncLoaded(ctx context.Context, run *syncRun, page *entity.Page) (*entity.SyncOutcome, error) {
	if reason, msg := uc.guard(page); reason != "" {
		return uc.skip(page.ID, reason, msg), nil
	}

	if !run.settings.Configured() {
		metrics.PageSyncsTotal.WithLabelValues(string(entity.OutcomeFailed), entity.ReasonNotConfigured).Inc()
		return &entity.SyncOutcome{
			PageID:    page.ID,
			Status:    entity.OutcomeFailed,
			Reason:    entity.ReasonNotConfigured,
			Message:   "Siloq API URL and key are not configured",
			ErrorKind: string(apperror.KindValidation),
		}, nil
	}

	payload, err := buildPayload(page)
	if err != nil {
		return nil, fmt.Errorf("analyze page %d: %w", page.ID, err)
	}

	if run.settings.DummyScanOnly {
		uc.logger.Debug("dummy scan, not contacting Siloq", zap.Int64("page_id", page.ID), zap.Int("word_count", payload.WordCount))
		return uc.skip(page.ID, entity.ReasonDummyScanOnly, "dummy scan only, page was analyzed but not sent"), nil
	}

	state := page.Sync
	siteID, err := run.site(ctx, uc.sites)
	if err != nil {
		return uc.fail(ctx, page.ID, state, err)
	}

	state.Status = entity.SyncStatusPending
	if err := uc.pages.SaveSyncState(ctx, page.ID, state); err != nil {
		return nil, fmt.Errorf("mark page %d pending: %w", page.ID, err)
	}

	start := uc.now()
	receipt, err := uc.client.SyncPage(ctx, run.settings.Credentials(), siteID, payload)
	metrics.SyncDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return uc.fail(ctx, page.ID, state, err)
	}

	syncedAt := uc.now().UTC()
	state.Status = entity.SyncStatusSynced
	state.LastSyncedAt = &syncedAt
	state.HasSchema = receipt.HasSchema || payload.HasSchema
	state.LastError = ""
	state.Retryable = false
	if err := uc.pages.SaveSyncState(ctx, page.ID, state); err != nil {
		return nil, fmt.Errorf("mark page %d synced: %w", page.ID, err)
	}

	metrics.PageSyncsTotal.WithLabelValues(string(entity.OutcomeSynced), "").Inc()
	uc.logger.Info("page synced", zap.Int64("page_id", page.ID), zap.String("remote_id", receipt.RemoteID))

	return &entity.SyncOutcome{
		PageID:   page.ID,
		Status:   entity.OutcomeSynced,
		RemoteID: receipt.RemoteID,
		SyncedAt: &syncedAt,
	}, nil
}

// guard returns a non-empty reason when the page must not be sent.
func (uc *syncEngineUseCase) guard(page *entity.Page) (string, string) {
	if page.IsRevision() {
		return entity.ReasonRevision, "revisions and autosaves are not synced"
	}
	if !slices.Contains(uc.opts.PostTypes, page.Type) {
		return entity.ReasonWrongType, fmt.Sprintf("post type %q is not synced", page.Type)
	}
	if !page.IsPublished() {
		return entity.ReasonNotPublished, fmt.Sprintf("page status is %q, only published pages are synced", page.Status)
	}
	return "", ""
}

func (uc *syncEngineUseCase) skip(pageID int64, reason, msg string) *entity.SyncOutcome {
	metrics.PageSyncsTotal.WithLabelValues(string(entity.OutcomeSkipped), reason).Inc()
	uc.logger.Debug("page sync skipped", zap.Int64("page_id", pageID), zap.String("reason", reason))
	return &entity.SyncOutcome{
		PageID:    pageID,
		Status:    entity.OutcomeSkipped,
		Reason:    reason,
		Message:   msg,
		ErrorKind: string(apperror.KindGuard),
	}
}

func (uc *syncEngineUseCase) fail(ctx context.Context, pageID int64, state entity.SyncState, cause error) (*entity.SyncOutcome, error) {
	kind := apperror.KindOf(cause)
	retryable := apperror.IsRetryable(cause)
	msg := apperror.MessageOf(cause)

	state.Status = entity.SyncStatusFailed
	state.LastError = msg
	state.Retryable = retryable
	if err := uc.pages.SaveSyncState(ctx, pageID, state); err != nil {
		return nil, fmt.Errorf("mark page %d failed: %w", pageID, err)
	}

	metrics.PageSyncsTotal.WithLabelValues(string(entity.OutcomeFailed), string(kind)).Inc()
	uc.logger.Warn("page sync failed",
		zap.Int64("page_id", pageID),
		zap.String("kind", string(kind)),
		zap.Bool("retryable", retryable),
		zap.Error(cause),
	)

	return &entity.SyncOutcome{
		PageID:    pageID,
		Status:    entity.OutcomeFailed,
		Message:   msg,
		Retryable: retryable,
		ErrorKind: string(kind),
	}, nil
}

func buildPayload(page *entity.Page) (*entity.SyncPayload, error) {
	analysis, err := content.Analyze(page.Content)
	if err != nil {
		return nil, err
	}
	return &entity.SyncPayload{
		ExternalID:  page.ID,
		Type:        page.Type,
		Title:       page.Title,
		Slug:        page.Slug,
		URL:         page.URL,
		Content:     page.Content,
		Text:        analysis.Text,
		WordCount:   analysis.WordCount,
		Headings:    analysis.Headings,
		HasSchema:   analysis.HasSchema,
		ContentHash: utils.HashContent(page.Title + "\x00" + page.Content),
		ModifiedAt:  page.UpdatedAt,
	}, nil
}
