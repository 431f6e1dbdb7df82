package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/repository"
)

// JobService creates and polls remote content-generation jobs.
type JobService interface {
	CreateContentJob(ctx context.Context, pageID int64) (*entity.ContentJob, error)
	GetJobStatus(ctx context.Context, jobID string) (*entity.ContentJob, error)
}

type jobUseCase struct {
	pages    repository.PageRepository
	settings repository.SettingsRepository
	client   repository.SiloqClient
	sites    SiteResolver
	logger   *zap.Logger
}

// NewJobService creates the content job use case.
func NewJobService(
	pages repository.PageRepository,
	settings repository.SettingsRepository,
	client repository.SiloqClient,
	sites SiteResolver,
	logger *zap.Logger,
) JobService {
	return &jobUseCase{pages: pages, settings: settings, client: client, sites: sites, logger: logger}
}

func (uc *jobUseCase) CreateContentJob(ctx context.Context, pageID int64) (*entity.ContentJob, error) {
	if _, err := uc.pages.FindByID(ctx, pageID); err != nil {
		return nil, err
	}
	settings, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	siteID, err := uc.sites.ResolveSiteID(ctx, settings)
	if err != nil {
		return nil, err
	}

	job, err := uc.client.CreateContentJob(ctx, settings.Credentials(), siteID, pageID)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("content job created", zap.Int64("page_id", pageID), zap.String("job_id", job.ID))
	return job, nil
}

func (uc *jobUseCase) GetJobStatus(ctx context.Context, jobID string) (*entity.ContentJob, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, apperror.New(apperror.KindValidation, "jobs.GetJobStatus", "job id is required")
	}
	settings, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return uc.client.GetJobStatus(ctx, settings.Credentials(), jobID)
}
