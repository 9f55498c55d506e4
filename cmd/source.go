package cmd

import (
	"fmt"
	"strings"

	"lair-scanner/feature/sources"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scanPathFlag     string
	scanPathCategory string
)

// sourceCmd is the parent command for source management.
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage media sources",
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Add a media source located at path on this machine",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSources(func(a *app, svc *sources.Service) error {
			source, err := svc.Add(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if scanPathFlag == "" {
				a.logger.Info("To scan files, add a scan path with: lair-scanner source add-path " + source.Name + " <path> <category>")
				return nil
			}

			sp, err := svc.AddScanPath(cmd.Context(), source.Name, scanPathFlag, scanPathCategory)
			if err != nil {
				return err
			}
			a.logger.Info("Added scan path", zap.String("source", source.Name), zap.String("path", sp.Path))
			return nil
		})
	},
}

var sourceLocateCmd = &cobra.Command{
	Use:   "locate <name> <path>",
	Short: "Set where a media source lives on this machine",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSources(func(a *app, svc *sources.Service) error {
			source, err := svc.Locate(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			a.logger.Info("Located media source", zap.String("source", source.Name), zap.String("path", source.LocalPath))
			return nil
		})
	},
}

var sourceAddPathCmd = &cobra.Command{
	Use:   "add-path <name> <path> <category>",
	Short: "Add a scan path to a media source",
	Long:  "Add a scan path to a media source. Category is one of " + strings.Join(sources.Categories, ", ") + ".",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSources(func(a *app, svc *sources.Service) error {
			sp, err := svc.AddScanPath(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			a.logger.Info("Added scan path", zap.String("source", args[0]), zap.String("path", sp.Path), zap.String("category", sp.Category))
			return nil
		})
	},
}

var sourceRemovePathCmd = &cobra.Command{
	Use:   "remove-path <name> <path>",
	Short: "Remove a scan path from a media source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSources(func(a *app, svc *sources.Service) error {
			if err := svc.RemoveScanPath(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			a.logger.Info("Removed scan path", zap.String("source", args[0]), zap.String("path", args[1]))
			return nil
		})
	},
}

func init() {
	sourceAddCmd.Flags().StringVar(&scanPathFlag, "scan-path", "", "add a scan path to the new source")
	sourceAddCmd.Flags().StringVar(&scanPathCategory, "scan-path-category", "movie", "category of the media in the scan path")

	sourceCmd.AddCommand(sourceAddCmd, sourceLocateCmd, sourceAddPathCmd, sourceRemovePathCmd)
	RootCmd.AddCommand(sourceCmd)
}

func withSources(fn func(*app, *sources.Service) error) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if err := fn(a, sources.NewService(a.client, a.cfg.API.ScannerID, a.logger)); err != nil {
		return fmt.Errorf("source command failed: %w", err)
	}
	return nil
}
