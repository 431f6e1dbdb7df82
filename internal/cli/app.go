package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/adapter/postgres"
	redis_adapter "github.com/Siloq-app/siloq-wordpress-sub001/internal/adapter/redis"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/adapter/siloq"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/delivery/http/handler"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/repository"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/usecase"
	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/config"
)

// App holds the wired use cases shared by every command.
type App struct {
	Sync      usecase.SyncEngine
	Importer  usecase.ContentImporter
	Jobs      usecase.JobService
	Sites     usecase.SiteService
	Redirects usecase.RedirectManager
	Pingers   map[string]handler.Pinger

	closers []func()
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type redisPinger struct{ client *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// NewApp connects to Postgres and, when configured, Redis, and wires the use cases.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{Pingers: map[string]handler.Pinger{}}

	pool, err := postgres.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, pool.Close)
	app.Pingers["postgres"] = pool
	logger.Info("postgres connection pool established")

	var (
		cache  repository.SiteIDCache
		leases repository.LeaseRepository
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			app.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("unable to connect to redis: %w", err)
		}
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		app.Pingers["redis"] = redisPinger{client: rdb}
		cache = redis_adapter.NewSiteIDCache(rdb)
		leases = redis_adapter.NewLeaseRepo(rdb)
		logger.Info("redis connection established")
	} else {
		logger.Warn("REDIS_ADDR is empty, site id cache and batch lease are disabled")
	}

	pages := postgres.NewPageRepo(pool)
	backups := postgres.NewBackupRepo(pool)
	redirects := postgres.NewRedirectRepo(pool)
	settings := postgres.NewSettingsRepo(pool)

	client := siloq.NewClient(siloq.Options{
		Timeout: cfg.RemoteTimeout,
		RPS:     cfg.RemoteRPS,
		Burst:   cfg.RemoteBurst,
	}, logger.Named("siloq"))

	sites := usecase.NewSiteService(settings, client, cache, cfg.SiteURL, cfg.SiteIDCacheTTL, logger.Named("sites"))

	app.Sites = sites
	app.Sync = usecase.NewSyncEngine(pages, settings, client, sites, leases, usecase.SyncOptions{
		PostTypes:  cfg.PostTypes(),
		StaleAfter: cfg.SyncStaleAfter,
		LeaseTTL:   cfg.BatchLeaseTTL,
	}, logger.Named("sync"))
	app.Importer = usecase.NewContentImporter(pages, backups, settings, client, cfg.BackupRetention, logger.Named("import"))
	app.Jobs = usecase.NewJobService(pages, settings, client, sites, logger.Named("jobs"))
	app.Redirects = usecase.NewRedirectManager(redirects, logger.Named("redirects"))

	return app, nil
}

func connectForMigrate(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return postgres.Connect(ctx, cfg.PostgresURL)
}
