package cmd

import (
	"fmt"

	"lair-scanner/core/storage"
	"lair-scanner/feature/scan"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// reportsCmd lists the archived scan reports of a source.
var reportsCmd = &cobra.Command{
	Use:   "reports <name>",
	Short: "List the archived scan reports of a media source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		var archive *scan.Archive
		if a.cfg.Storage.Enabled {
			client, err := storage.NewClient(a.cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to connect to storage: %w", err)
			}
			archive = scan.NewArchive(client, a.cfg.Storage, a.logger)
		}

		svc := scan.NewService(a.client, nil, a.cfg.Scan, a.cfg.Staging, archive, a.logger)
		reports, err := svc.Reports(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(reports) == 0 {
			fmt.Fprintln(out, "No archived reports.")
			return nil
		}
		for _, r := range reports {
			fmt.Fprintf(out, "%s  %8s  %s\n", r.Key, humanize.IBytes(uint64(r.Size)), humanize.Time(r.LastModified))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(reportsCmd)
}
