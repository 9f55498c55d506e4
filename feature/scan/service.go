package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lair-scanner/core/api"
	"lair-scanner/core/ignore"
	"lair-scanner/core/local"
	"lair-scanner/core/logger"
	"lair-scanner/core/models"
	"lair-scanner/core/properties"
	"lair-scanner/core/reconcile"
	"lair-scanner/core/remote"
	"lair-scanner/core/staging"
	"lair-scanner/feature/sources"

	"go.uber.org/zap"
)

// API is the subset of the Lair API used while scanning.
type API interface {
	api.FileCatalog
	api.ScanRecorder
	api.SettingsStore
}

// Options controls which sources are scanned and how.
type Options struct {
	// DryRun classifies changes without recording them on the server.
	DryRun bool
	// List reads the changes back into the report.
	List bool
	// ListIdentical also lists identical files. Implies List.
	ListIdentical bool
	// UploadIdentical also uploads identical files.
	UploadIdentical bool
	// Observer is notified of the events of every source. Optional.
	Observer func(source models.Source, ev models.Event, progress float64)
}

// Service scans media sources.
type Service struct {
	client  API
	sources *sources.Service
	cfg     reconcile.Config
	staging staging.Config
	archive *Archive
	logger  *zap.Logger
}

// NewService creates a scan service. archive may be nil.
func NewService(client API, sources *sources.Service, cfg reconcile.Config, stagingCfg staging.Config, archive *Archive, logger *zap.Logger) *Service {
	return &Service{
		client:  client,
		sources: sources,
		cfg:     cfg,
		staging: stagingCfg,
		archive: archive,
		logger:  logger,
	}
}

// Scan reconciles the named sources, or every source when no name is given.
// Sources without a local path are skipped unless they were named explicitly.
// Reports of the sources scanned before a failure are returned with the error.
func (s *Service) Scan(ctx context.Context, opts Options, names ...string) ([]*Report, error) {
	scanner, err := s.sources.Scanner(ctx)
	if err != nil {
		return nil, err
	}

	srcs, err := s.sources.Resolve(ctx, names...)
	if err != nil {
		return nil, err
	}

	settings, err := s.client.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	var reports []*Report
	for _, src := range srcs {
		if src.LocalPath == "" {
			if len(names) > 0 {
				return reports, fmt.Errorf("%w: %s", local.ErrNoLocalPath, src.Name)
			}
			s.logger.Warn("Skipping source without local path", zap.String("source", src.Name))
			continue
		}
		if len(src.ScanPaths) == 0 {
			s.logger.Warn("Source has no scan paths, every remote file will be reported as deleted", zap.String("source", src.Name))
		}

		report, err := s.scanSource(ctx, src, scanner.ID, settings.Ignores, opts)
		if err != nil {
			return reports, fmt.Errorf("failed to scan %s: %w", src.Name, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (s *Service) scanSource(ctx context.Context, src models.Source, scannerID string, globalIgnores []string, opts Options) (*Report, error) {
	log := s.logger.With(zap.String("source", src.Name))

	matcher, err := ignore.New(append(append([]string{}, s.cfg.Ignores...), globalIgnores...), src.Properties.Ignores)
	if err != nil {
		return nil, err
	}

	store, err := staging.Open(s.staging, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("Failed to close staging store", zap.Error(err))
		}
	}()

	scanner := local.NewScanner(src, store, local.Options{
		MaxDepth:   s.cfg.MaxDepth,
		Ignores:    matcher,
		Properties: properties.NewRegistry(log, s.cfg.YAMLFields),
	}, log)
	lister := remote.NewLister(src, store, s.client, s.cfg.PageSize, log)
	engine := reconcile.NewEngine(store, s.client, scanner, lister, s.cfg, s.logger)

	runOpts := reconcile.Options{
		DryRun:          opts.DryRun,
		ListIdentical:   opts.ListIdentical,
		UploadIdentical: opts.UploadIdentical,
		ScannerID:       scannerID,
	}
	if opts.Observer != nil {
		runOpts.Observer = func(ev models.Event, progress float64) {
			opts.Observer(src, ev, progress)
		}
	}

	report := &Report{
		SourceID:   src.ID,
		SourceName: src.Name,
		LocalPath:  src.LocalPath,
		DryRun:     opts.DryRun,
		StartedAt:  time.Now().UTC(),
	}

	summary, err := engine.Run(ctx, src, runOpts)
	if err != nil {
		return nil, err
	}
	report.FinishedAt = time.Now().UTC()
	report.Summary = *summary

	archiving := s.archive != nil && !opts.DryRun
	if opts.List || opts.ListIdentical || archiving {
		if report.Changes, err = changes(ctx, store); err != nil {
			return nil, err
		}
	}

	if archiving {
		key, err := s.archive.Save(ctx, report)
		if err != nil {
			return nil, err
		}
		report.ArchiveKey = key
	}

	logger.WithScan(s.logger, src.Name, summary.ScanID).Info("Source scanned",
		zap.Duration("duration", report.Duration()),
		zap.Int("changes", summary.Changes()),
	)
	return report, nil
}

// changes reads the classified changes back in path order.
func changes(ctx context.Context, store *staging.Store) ([]models.Change, error) {
	var out []models.Change
	err := store.Stream(ctx, staging.Changed, 0, func(e staging.Entry) error {
		var c models.Change
		if err := e.Decode(&c); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reports lists the archived reports of a source.
func (s *Service) Reports(ctx context.Context, source string) ([]ArchivedReport, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List(ctx, source)
}

// ErrArchiveDisabled is returned when listing reports without object storage.
var ErrArchiveDisabled = errors.New("report archive is disabled")
