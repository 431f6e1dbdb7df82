package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/repository"
	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/utils"
)

// SiteResolver finds the Siloq site id for the current settings.
type SiteResolver interface {
	ResolveSiteID(ctx context.Context, settings entity.Settings) (string, error)
}

// SiteService covers connection checks, site resolution and the business profile.
type SiteService interface {
	SiteResolver
	// TestConnection checks the given credentials. When persist is true they are
	// saved as the active configuration on success.
	TestConnection(ctx context.Context, apiURL, apiKey string, persist bool) (*entity.ConnectionInfo, error)
	GetBusinessProfile(ctx context.Context) (entity.BusinessProfile, error)
	SaveBusinessProfile(ctx context.Context, profile entity.BusinessProfile) error
}

type siteUseCase struct {
	settings repository.SettingsRepository
	client   repository.SiloqClient
	cache    repository.SiteIDCache
	siteURL  string
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSiteService creates the site use case. cache may be nil.
func NewSiteService(
	settings repository.SettingsRepository,
	client repository.SiloqClient,
	cache repository.SiteIDCache,
	siteURL string,
	cacheTTL time.Duration,
	logger *zap.Logger,
) SiteService {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &siteUseCase{
		settings: settings,
		client:   client,
		cache:    cache,
		siteURL:  siteURL,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (uc *siteUseCase) TestConnection(ctx context.Context, apiURL, apiKey string, persist bool) (*entity.ConnectionInfo, error) {
	apiURL, apiKey = strings.TrimSpace(apiURL), strings.TrimSpace(apiKey)
	if apiURL == "" || apiKey == "" {
		return nil, apperror.New(apperror.KindValidation, "site.TestConnection", "API URL and API key are required")
	}

	creds := entity.Credentials{BaseURL: apiURL, APIKey: apiKey}
	info, err := uc.client.TestConnection(ctx, creds)
	if err != nil {
		return nil, err
	}

	current, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	sameAccount := current.APIURL == apiURL && current.APIKey == apiKey

	if persist {
		if err := uc.settings.SetOption(ctx, entity.OptionAPIURL, apiURL); err != nil {
			return nil, err
		}
		if err := uc.settings.SetOption(ctx, entity.OptionAPIKey, apiKey); err != nil {
			return nil, err
		}
		// A different account invalidates the stored site id.
		if !sameAccount && info.SiteID == "" {
			if err := uc.settings.SetOption(ctx, entity.OptionSiteID, ""); err != nil {
				return nil, err
			}
		}
	}
	if info.SiteID != "" && (persist || sameAccount) {
		if err := uc.settings.SetOption(ctx, entity.OptionSiteID, info.SiteID); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("siloq connection verified", zap.String("site_id", info.SiteID), zap.Bool("persisted", persist))
	return info, nil
}

// ResolveSiteID applies, in order: the persisted site id, the cached
// resolution, the remote site whose URL matches this site, the first remote site.
func (uc *siteUseCase) ResolveSiteID(ctx context.Context, settings entity.Settings) (string, error) {
	if settings.SiteID != "" {
		return settings.SiteID, nil
	}
	if !settings.Configured() {
		return "", apperror.New(apperror.KindValidation, "site.Resolve", "Siloq API URL and key are not configured")
	}

	account := settings.APIURL + "\x00" + settings.APIKey
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, account)
		if err != nil {
			uc.logger.Warn("site id cache read failed", zap.Error(err))
		} else if cached != "" {
			return cached, nil
		}
	}

	sites, err := uc.client.ListSites(ctx, settings.Credentials())
	if err != nil {
		return "", err
	}
	if len(sites) == 0 {
		return "", apperror.New(apperror.KindNotFound, "site.Resolve", "no Siloq sites are available for this API key")
	}

	chosen := sites[0]
	matched := false
	for _, s := range sites {
		if utils.SameHost(s.URL, uc.siteURL) {
			chosen, matched = s, true
			break
		}
	}
	if !matched {
		uc.logger.Warn("no Siloq site matches this site URL, using the first one",
			zap.String("site_url", uc.siteURL),
			zap.String("site_id", chosen.ID),
		)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, account, chosen.ID, uc.cacheTTL); err != nil {
			uc.logger.Warn("site id cache write failed", zap.Error(err))
		}
	}
	return chosen.ID, nil
}

func (uc *siteUseCase) GetBusinessProfile(ctx context.Context) (entity.BusinessProfile, error) {
	settings, siteID, err := uc.loadWithSite(ctx)
	if err != nil {
		return nil, err
	}
	return uc.client.GetBusinessProfile(ctx, settings.Credentials(), siteID)
}

func (uc *siteUseCase) SaveBusinessProfile(ctx context.Context, profile entity.BusinessProfile) error {
	if !hasAnyValue(profile) {
		return apperror.New(apperror.KindValidation, "site.SaveBusinessProfile", "business profile has no fields")
	}
	settings, siteID, err := uc.loadWithSite(ctx)
	if err != nil {
		return err
	}
	return uc.client.SaveBusinessProfile(ctx, settings.Credentials(), siteID, profile)
}

func (uc *siteUseCase) loadWithSite(ctx context.Context) (entity.Settings, string, error) {
	settings, err := uc.settings.Load(ctx)
	if err != nil {
		return entity.Settings{}, "", fmt.Errorf("load settings: %w", err)
	}
	siteID, err := uc.ResolveSiteID(ctx, settings)
	if err != nil {
		return entity.Settings{}, "", err
	}
	return settings, siteID, nil
}

func hasAnyValue(profile entity.BusinessProfile) bool {
	for _, v := range profile {
		switch val := v.(type) {
		case nil:
		case string:
			if strings.TrimSpace(val) != "" {
				return true
			}
		case []any:
			if len(val) > 0 {
				return true
			}
		default:
			return true
		}
	}
	return false
}
