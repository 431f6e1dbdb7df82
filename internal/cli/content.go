package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

func newImportCommand(opts *RootOptions) *cobra.Command {
	var action string
	cmd := &cobra.Command{
		Use:   "import <page-id> <job-id>",
		Short: "Apply a completed content job to a page",
		Args:  cobra.ExactArgs(2),
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

			result, err := app.Importer.ImportFromJob(cmd.Context(), pageID, args[1], entity.ImportOptions{Action: action})
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), result)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported job %s into page %d (%s)\n", result.JobID, result.PageID, result.Action)
			return err
		},
	}
	cmd.Flags().StringVar(&action, "action", entity.ImportActionReplace, "replace or create_draft")
	return cmd
}

func newRestoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <page-id>",
		Short: "Restore a page from its latest backup",
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

			result, err := app.Importer.RestoreBackup(cmd.Context(), pageID)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), result)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "restored page %d from backup %d taken %s\n",
				result.PageID, result.BackupID, result.BackupTime.Format("2006-01-02 15:04:05"))
			return err
		},
	}
}
