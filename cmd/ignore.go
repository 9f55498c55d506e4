package cmd

import (
	"fmt"

	"lair-scanner/feature/ignores"

	"github.com/spf13/cobra"
)

// ignoreSource targets the patterns of one source instead of the global ones.
var ignoreSource string

// ignoreCmd lists or adds ignore patterns.
var ignoreCmd = &cobra.Command{
	Use:   "ignore [patterns...]",
	Short: "List or add patterns of files to ignore when scanning",
	Long: `Without arguments, list the ignored patterns. With arguments, add them.

Global patterns are matched against absolute paths on this machine, source
patterns (--source) against paths relative to the source.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		svc := ignores.NewService(a.client, a.logger)

		var patterns []string
		if len(args) == 0 {
			patterns, err = svc.List(cmd.Context(), ignoreSource)
		} else {
			patterns, err = svc.Add(cmd.Context(), ignoreSource, args...)
		}
		if err != nil {
			return err
		}

		printPatterns(cmd, patterns)
		return nil
	},
}

// unignoreCmd removes ignore patterns.
var unignoreCmd = &cobra.Command{
	Use:   "unignore <patterns...>",
	Short: "Remove patterns of files to ignore when scanning",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		patterns, err := ignores.NewService(a.client, a.logger).Remove(cmd.Context(), ignoreSource, args...)
		if err != nil {
			return err
		}

		printPatterns(cmd, patterns)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{ignoreCmd, unignoreCmd} {
		c.Flags().StringVarP(&ignoreSource, "source", "s", "", "name of the media source")
		RootCmd.AddCommand(c)
	}
}

func printPatterns(cmd *cobra.Command, patterns []string) {
	out := cmd.OutOrStdout()
	if len(patterns) == 0 {
		fmt.Fprintln(out, "No files are ignored.")
		return
	}
	for _, p := range patterns {
		fmt.Fprintln(out, p)
	}
}
