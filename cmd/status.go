package cmd

import (
	"fmt"

	"lair-scanner/feature/sources"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// statusCmd lists the media sources and where they live.
var statusCmd = &cobra.Command{
	Use:   "status [names...]",
	Short: "Show media sources, their location and scan paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		statuses, err := sources.NewService(a.client, a.cfg.API.ScannerID, a.logger).Status(cmd.Context(), args...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(statuses) == 0 {
			fmt.Fprintln(out, "You have no media sources defined.")
			return nil
		}

		for _, st := range statuses {
			location := "unknown location"
			if st.Source.LocalPath != "" {
				location = "in " + st.Source.LocalPath
			}
			fmt.Fprintf(out, "%s (%s), %s files\n", st.Source.Name, location, humanize.Comma(int64(st.Files)))
			for _, sp := range st.Source.ScanPaths {
				fmt.Fprintf(out, "- %s (%s)\n", sp.Path, sp.Category)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}
