package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/delivery/http/handler"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/delivery/http/middleware"
)

func New(h *handler.Handler, authSecret string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(5 * time.Minute))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authSecret, logger))
			r.Use(middleware.Require(middleware.CapEditPages, logger))

			r.Post("/pages/{id}/sync", h.HandleSyncPage)
			r.Post("/pages/{id}/saved", h.HandlePageSaved)
			r.Post("/pages/{id}/import", h.HandleImport)
			r.Post("/pages/{id}/restore", h.HandleRestore)
			r.Get("/pages/{id}/backups", h.HandleListBackups)
			r.Post("/pages/{id}/jobs", h.HandleCreateJob)
			r.Get("/jobs/{id}", h.HandleGetJob)
			r.Get("/business-profile", h.HandleGetBusinessProfile)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authSecret, logger))
			r.Use(middleware.Require(middleware.CapManageOptions, logger))

			r.Post("/sync/batch", h.HandleSyncBatch)
			r.Post("/sync/outdated", h.HandleSyncOutdated)
			r.Post("/connection/test", h.HandleTestConnection)
			r.Put("/business-profile", h.HandleSaveBusinessProfile)
			r.Get("/redirects", h.HandleListRedirects)
			r.Get("/redirects/resolve", h.HandleResolveRedirect)
			r.Post("/redirects", h.HandleCreateRedirect)
		})
	})

	return r
}
