package cmd

import (
	"fmt"
	"sort"
	"strings"

	"lair-scanner/core/models"
	"lair-scanner/core/storage"
	"lair-scanner/feature/scan"
	"lair-scanner/feature/sources"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunScan          bool
	listScan            bool
	listIdenticalScan   bool
	uploadIdenticalScan bool
)

// scanCmd reconciles media sources with the server.
var scanCmd = &cobra.Command{
	Use:   "scan [names...]",
	Short: "Scan media sources",
	Long: `Scan the local directories of media sources and upload the differences
with the files known by the server.

Examples:
  # Scan every source located on this machine
  lair-scanner scan

  # Show what would change without recording anything
  lair-scanner scan movies --dry-run --list`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVarP(&dryRunScan, "dry-run", "d", false, "show changes but do not sync them to the server")
	scanCmd.Flags().BoolVarP(&listScan, "list", "l", false, "print the full list of changes")
	scanCmd.Flags().BoolVar(&listIdenticalScan, "list-identical", false, "also print unchanged files (implies --list)")
	scanCmd.Flags().BoolVar(&uploadIdenticalScan, "upload-identical", false, "also upload unchanged files")

	RootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
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

	srcs := sources.NewService(a.client, a.cfg.API.ScannerID, a.logger)
	svc := scan.NewService(a.client, srcs, a.cfg.Scan, a.cfg.Staging, archive, a.logger)

	progress := newProgressLogger(a.logger)
	reports, err := svc.Scan(cmd.Context(), scan.Options{
		DryRun:          dryRunScan,
		List:            listScan,
		ListIdentical:   listIdenticalScan,
		UploadIdentical: uploadIdenticalScan,
		Observer:        progress.observe,
	}, args...)

	for _, report := range reports {
		printScanReport(a.logger, report)
		if listScan || listIdenticalScan {
			printChanges(cmd, report.Changes)
		}
	}
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		a.logger.Warn("No media source was scanned")
	}
	if dryRunScan {
		a.logger.Info("Dry-run mode: no changes were recorded.")
	}
	return nil
}

// progressLogger logs progress every tenth of a source.
type progressLogger struct {
	logger *zap.Logger
	last   map[string]int
}

func newProgressLogger(l *zap.Logger) *progressLogger {
	return &progressLogger{logger: l, last: make(map[string]int)}
}

func (p *progressLogger) observe(source models.Source, _ models.Event, progress float64) {
	step := int(progress * 10)
	if step <= p.last[source.ID] {
		return
	}
	p.last[source.ID] = step
	p.logger.Info("Scanning", zap.String("source", source.Name), zap.String("progress", fmt.Sprintf("%d%%", step*10)))
}

func printScanReport(l *zap.Logger, r *scan.Report) {
	s := r.Summary
	fields := []zap.Field{
		zap.String("source", r.SourceName),
		zap.String("path", r.LocalPath),
		zap.String("files", humanize.Comma(int64(s.Files))),
		zap.Int("added", s.Added),
		zap.Int("modified", s.Modified),
		zap.Int("deleted", s.Deleted),
		zap.Int("identical", s.Identical),
		zap.Int("uploaded", s.Uploaded),
		zap.Duration("duration", r.Duration()),
	}
	if s.ScanID != "" {
		fields = append(fields, zap.String("scan_id", s.ScanID))
	}
	if r.ArchiveKey != "" {
		fields = append(fields, zap.String("archive", r.ArchiveKey))
	}
	l.Info("Scan report", fields...)
}

func printChanges(cmd *cobra.Command, changes []models.Change) {
	out := cmd.OutOrStdout()
	for _, c := range changes {
		line := fmt.Sprintf("%-9s %s", c.Kind, c.Path)
		if c.File != nil && c.Kind != models.ChangeIdentical {
			line += " (" + humanize.IBytes(uint64(c.File.Size)) + ")"
		}
		if len(c.Previous) > 0 {
			line += " [" + describePrevious(c) + "]"
		}
		fmt.Fprintln(out, line)
	}
}

// describePrevious lists the changed attributes with their previous values.
func describePrevious(c models.Change) string {
	keys := make([]string, 0, len(c.Previous))
	for k := range c.Previous {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		switch v := c.Previous[k].(type) {
		case float64:
			if k == models.AttrSize {
				parts[i] = fmt.Sprintf("%s was %s", k, humanize.IBytes(uint64(v)))
				continue
			}
			parts[i] = fmt.Sprintf("%s was %v", k, v)
		case string, int64:
			parts[i] = fmt.Sprintf("%s was %v", k, v)
		default:
			parts[i] = k + " changed"
		}
	}
	return strings.Join(parts, ", ")
}
