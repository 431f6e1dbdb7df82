package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/usecase"
)

func newSyncCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push pages to Siloq",
	}
	cmd.AddCommand(newSyncPageCommand(opts))
	cmd.AddCommand(newSyncBatchCommand(opts))
	cmd.AddCommand(newSyncAllCommand(opts))
	cmd.AddCommand(newSyncOutdatedCommand(opts))
	return cmd
}

func parsePageID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid page id %q", arg)
	}
	return id, nil
}

func newSyncPageCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "page <id>",
		Short: "Sync a single page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID, err := parsePageID(args[0])
			if err != nil {
				return err
			}
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			outcome, err := app.Sync.SyncPage(cmd.Context(), pageID)
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), opts.Format, outcome)
		},
	}
}

func newSyncBatchCommand(opts *RootOptions) *cobra.Command {
	var offset, batchSize int
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Sync one batch of published pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			summary, err := app.Sync.SyncAllPages(cmd.Context(), offset, batchSize)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), opts.Format, summary)
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "index of the first page")
	cmd.Flags().IntVar(&batchSize, "batch-size", usecase.DefaultBatchSize, "pages per batch (1-200)")
	return cmd
}

func newSyncAllCommand(opts *RootOptions) *cobra.Command {
	var batchSize int
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Sync every published page, batch by batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			total := &entity.BatchSummary{BatchSize: usecase.ClampBatchSize(batchSize)}
			offset := 0
			for {
				summary, err := app.Sync.SyncAllPages(cmd.Context(), offset, batchSize)
				if err != nil {
					return err
				}
				for _, o := range summary.Results {
					total.Add(o)
				}
				total.Total, total.NextOffset = summary.Total, summary.NextOffset
				if opts.Format == "text" {
					if err := printSummary(cmd.OutOrStdout(), opts.Format, summary); err != nil {
						return err
					}
				}
				if !summary.HasMore || summary.NextOffset == offset {
					break
				}
				offset = summary.NextOffset
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), total)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", usecase.DefaultBatchSize, "pages per batch (1-200)")
	return cmd
}

func newSyncOutdatedCommand(opts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "outdated",
		Short: "Sync pages never synced or synced too long ago",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			summary, err := app.Sync.SyncOutdatedPages(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), opts.Format, summary)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", usecase.DefaultBatchSize, "maximum pages to sync (1-200)")
	return cmd
}
