package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/content"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/repository"
	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/metrics"
)

// ContentImporter applies generated content to pages and undoes it from backups.
type ContentImporter interface {
	ImportFromJob(ctx context.Context, pageID int64, jobID string, opts entity.ImportOptions) (*entity.ImportResult, error)
	RestoreBackup(ctx context.Context, pageID int64) (*entity.RestoreResult, error)
	ListBackups(ctx context.Context, pageID int64) ([]*entity.Backup, error)
}

type contentImportUseCase struct {
	pages     repository.PageRepository
	backups   repository.BackupRepository
	settings  repository.SettingsRepository
	client    repository.SiloqClient
	retention int
	logger    *zap.Logger
}

// NewContentImporter creates the import use case. retention bounds the number
// of backups kept per page; 0 keeps all of them.
func NewContentImporter(
	pages repository.PageRepository,
	backups repository.BackupRepository,
	settings repository.SettingsRepository,
	client repository.SiloqClient,
	retention int,
	logger *zap.Logger,
) ContentImporter {
	return &contentImportUseCase{
		pages:     pages,
		backups:   backups,
		settings:  settings,
		client:    client,
		retention: retention,
		logger:    logger,
	}
}

func (uc *contentImportUseCase) ImportFromJob(ctx context.Context, pageID int64, jobID string, opts entity.ImportOptions) (*entity.ImportResult, error) {
	action := opts.Action
	if action == "" {
		action = entity.ImportActionReplace
	}
	if action != entity.ImportActionReplace && action != entity.ImportActionCreateDraft {
		return nil, apperror.New(apperror.KindValidation, "import", fmt.Sprintf("unknown import action %q", opts.Action))
	}
	if strings.TrimSpace(jobID) == "" {
		return nil, apperror.New(apperror.KindValidation, "import", "job id is required")
	}

	job, err := uc.fetchCompletedJob(ctx, jobID)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(action, "failed").Inc()
		return nil, err
	}

	var result *entity.ImportResult
	switch action {
	case entity.ImportActionCreateDraft:
		result, err = uc.createDraft(ctx, pageID, job)
	default:
		result, err = uc.replace(ctx, pageID, job)
	}
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(action, "failed").Inc()
		return nil, err
	}

	metrics.ImportsTotal.WithLabelValues(action, "success").Inc()
	uc.logger.Info("content imported",
		zap.String("action", action),
		zap.String("job_id", jobID),
		zap.Int64("source_page_id", pageID),
		zap.Int64("page_id", result.PageID),
	)
	return result, nil
}

func (uc *contentImportUseCase) fetchCompletedJob(ctx context.Context, jobID string) (*entity.ContentJob, error) {
	settings, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	job, err := uc.client.GetJobStatus(ctx, settings.Credentials(), jobID)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case entity.JobComplete:
	case entity.JobFailed:
		msg := "content job failed"
		if job.Error != "" {
			msg += ": " + job.Error
		}
		return nil, &apperror.Error{Kind: apperror.KindJobNotReady, Op: "import", Message: msg}
	default:
		return nil, &apperror.Error{
			Kind:      apperror.KindJobNotReady,
			Op:        "import",
			Message:   fmt.Sprintf("content job is %s, try again later", job.Status),
			Retryable: true,
		}
	}

	if job.Content == nil || strings.TrimSpace(job.Content.Content) == "" {
		return nil, apperror.Permanent("import", "completed job has no content", 0)
	}
	return job, nil
}

func (uc *contentImportUseCase) createDraft(ctx context.Context, pageID int64, job *entity.ContentJob) (*entity.ImportResult, error) {
	source, err := uc.pages.FindByID(ctx, pageID)
	if err != nil {
		return nil, err
	}

	body := withSchema(job.Content.Content, job.Content.Schema)
	draft := &entity.Page{
		Type:     source.Type,
		Title:    draftTitle(source, job.Content),
		Status:   entity.PageStatusDraft,
		Content:  body,
		Sync: entity.SyncState{
			Status:             entity.SyncStatusNever,
			HasSchema:          content.HasSchema(body),
			GeneratedFromJobID: job.ID,
		},
	}
	id, err := uc.pages.CreateDraft(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create draft from job %s: %w", job.ID, err)
	}

	return &entity.ImportResult{
		PageID: id,
		Action: entity.ImportActionCreateDraft,
		JobID:  job.ID,
	}, nil
}

func (uc *contentImportUseCase) replace(ctx context.Context, pageID int64, job *entity.ContentJob) (*entity.ImportResult, error) {
	page, err := uc.pages.FindByID(ctx, pageID)
	if err != nil {
		return nil, err
	}

	backup := &entity.Backup{
		PageID:          page.ID,
		Title:           page.Title,
		ContentSnapshot: page.Content,
		SourceJobID:     job.ID,
	}
	if err := uc.backups.Save(ctx, backup); err != nil {
		// Nothing has been overwritten yet.
		return nil, fmt.Errorf("backup page %d: %w", page.ID, err)
	}
	uc.prune(ctx, page.ID)

	title := job.Content.Title
	if strings.TrimSpace(title) == "" {
		title = page.Title
	}
	body := withSchema(job.Content.Content, job.Content.Schema)
	if err := uc.pages.UpdateContent(ctx, page.ID, title, body); err != nil {
		return nil, fmt.Errorf("overwrite page %d: %w", page.ID, err)
	}

	state := page.Sync
	state.GeneratedFromJobID = job.ID
	state.HasSchema = content.HasSchema(body)
	if err := uc.pages.SaveSyncState(ctx, page.ID, state); err != nil {
		return nil, fmt.Errorf("annotate page %d: %w", page.ID, err)
	}

	return &entity.ImportResult{
		PageID:   page.ID,
		Action:   entity.ImportActionReplace,
		JobID:    job.ID,
		BackupID: backup.ID,
	}, nil
}

func (uc *contentImportUseCase) prune(ctx context.Context, pageID int64) {
	if uc.retention <= 0 {
		return
	}
	removed, err := uc.backups.Prune(ctx, pageID, uc.retention)
	if err != nil {
		uc.logger.Warn("failed to prune backups", zap.Int64("page_id", pageID), zap.Error(err))
		return
	}
	if removed > 0 {
		uc.logger.Debug("pruned backups", zap.Int64("page_id", pageID), zap.Int64("removed", removed))
	}
}

func (uc *contentImportUseCase) RestoreBackup(ctx context.Context, pageID int64) (*entity.RestoreResult, error) {
	page, err := uc.pages.FindByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	backup, err := uc.backups.Latest(ctx, pageID)
	if err != nil {
		if errors.Is(err, apperror.ErrNoBackup) {
			metrics.ImportsTotal.WithLabelValues("restore", "failed").Inc()
		}
		return nil, err
	}

	if err := uc.pages.UpdateContent(ctx, pageID, backup.Title, backup.ContentSnapshot); err != nil {
		metrics.ImportsTotal.WithLabelValues("restore", "failed").Inc()
		return nil, fmt.Errorf("restore page %d: %w", pageID, err)
	}
	if err := uc.backups.Delete(ctx, backup.ID); err != nil {
		return nil, fmt.Errorf("delete restored backup %d: %w", backup.ID, err)
	}

	// The page now carries whatever the previous import left behind.
	state := page.Sync
	state.GeneratedFromJobID = ""
	remaining, err := uc.backups.ListByPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if len(remaining) > 0 {
		state.GeneratedFromJobID = remaining[0].SourceJobID
	}
	state.HasSchema = content.HasSchema(backup.ContentSnapshot)
	if err := uc.pages.SaveSyncState(ctx, pageID, state); err != nil {
		return nil, fmt.Errorf("annotate page %d: %w", pageID, err)
	}

	metrics.ImportsTotal.WithLabelValues("restore", "success").Inc()
	uc.logger.Info("backup restored", zap.Int64("page_id", pageID), zap.Int64("backup_id", backup.ID))

	return &entity.RestoreResult{
		PageID:     pageID,
		BackupID:   backup.ID,
		BackupTime: backup.CreatedAt,
	}, nil
}

func (uc *contentImportUseCase) ListBackups(ctx context.Context, pageID int64) ([]*entity.Backup, error) {
	if _, err := uc.pages.FindByID(ctx, pageID); err != nil {
		return nil, err
	}
	return uc.backups.ListByPage(ctx, pageID)
}

func draftTitle(source *entity.Page, generated *entity.GeneratedContent) string {
	if t := strings.TrimSpace(generated.Title); t != "" {
		return t
	}
	if h := content.FirstHeading(generated.Content); h != "" {
		return h
	}
	return source.Title + " (Siloq draft)"
}

// withSchema appends the JSON-LD block unless the body already embeds one.
func withSchema(body, schema string) string {
	schema = strings.TrimSpace(schema)
	if schema == "" || content.HasSchema(body) {
		return body
	}
	return body + "\n<script type=\"application/ld+json\">" + schema + "</script>"
}
