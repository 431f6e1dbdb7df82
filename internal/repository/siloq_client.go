package repository

import (
	"context"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

// SiloqClient defines the contract for the remote Siloq SaaS API.
// Expected failures are returned as *apperror.Error values carrying a retryable flag.
type SiloqClient interface {
	TestConnection(ctx context.Context, creds entity.Credentials) (*entity.ConnectionInfo, error)
	SyncPage(ctx context.Context, creds entity.Credentials, siteID string, payload *entity.SyncPayload) (*entity.SyncReceipt, error)
	CreateContentJob(ctx context.Context, creds entity.Credentials, siteID string, pageID int64) (*entity.ContentJob, error)
	GetJobStatus(ctx context.Context, creds entity.Credentials, jobID string) (*entity.ContentJob, error)
	GetBusinessProfile(ctx context.Context, creds entity.Credentials, siteID string) (entity.BusinessProfile, error)
	SaveBusinessProfile(ctx context.Context, creds entity.Credentials, siteID string, profile entity.BusinessProfile) error
	ListSites(ctx context.Context, creds entity.Credentials) ([]entity.Site, error)
}
