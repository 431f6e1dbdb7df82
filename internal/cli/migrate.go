package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/adapter/postgres"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and seed bootstrap options",
		Long: `Create the connector tables if they do not exist.

SILOQ_API_URL and SILOQ_API_KEY, when set, are written to the options table
unless an administrator already configured them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := connectForMigrate(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}

			settings := postgres.NewSettingsRepo(pool)
			seeds := map[string]string{
				entity.OptionAPIURL: opts.cfg.SiloqAPIURL,
				entity.OptionAPIKey: opts.cfg.SiloqAPIKey,
			}
			for name, value := range seeds {
				if value == "" {
					continue
				}
				if err := settings.SeedOption(ctx, name, value); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return err
		},
	}
}
