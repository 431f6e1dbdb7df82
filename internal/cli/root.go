// Package cli implements the siloq command line.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/config"
	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/logger"
)

// ValidFormats are the accepted --format values.
var ValidFormats = []string{"text", "json"}

// AppBuilder creates the wired application for a command.
type AppBuilder func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error)

// RootOptions holds global flags and state shared by subcommands.
type RootOptions struct {
	Format string

	cfg      *config.Config
	logger   *zap.Logger
	buildApp AppBuilder
}

func (o *RootOptions) app(ctx context.Context) (*App, error) {
	return o.buildApp(ctx, o.cfg, o.logger)
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(NewApp)
}

func newRootCommand(build AppBuilder) *cobra.Command {
	opts := &RootOptions{buildApp: build}

	cmd := &cobra.Command{
		Use:   "siloq",
		Short: "Siloq connector sync service",
		Long:  "Keeps the site's pages in sync with the Siloq platform and imports generated content back.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			opts.cfg, opts.logger = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSyncCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newRestoreCommand(opts))

	return cmd
}
