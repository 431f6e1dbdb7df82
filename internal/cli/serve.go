package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/delivery/http/handler"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/delivery/http/router"
)

func newServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	app, err := opts.app(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	log := opts.logger
	if opts.cfg.AuthSecret == "" {
		log.Warn("AUTH_SECRET is empty, every authenticated route will answer 401")
	}

	h := handler.NewHandler(handler.Deps{
		Sync:      app.Sync,
		Importer:  app.Importer,
		Jobs:      app.Jobs,
		Sites:     app.Sites,
		Redirects: app.Redirects,
		Pingers:   app.Pingers,
	}, log.Named("http"))

	server := &http.Server{
		Addr:         ":" + opts.cfg.ServerPort,
		Handler:      router.New(h, opts.cfg.AuthSecret, log.Named("http")),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("port", opts.cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exiting")
	return nil
}
