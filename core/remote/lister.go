// Package remote pages through the remote file catalog of a source and stages
// every file in the downloaded partition of the staging store.
package remote

import (
	"context"
	"fmt"

	"lair-scanner/core/api"
	"lair-scanner/core/models"
	"lair-scanner/core/staging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the number of files requested per page.
const DefaultPageSize = 500

// maxPendingBatches bounds the batches being persisted while the next page is fetched.
const maxPendingBatches = 2

// Lister stages the remote files of a source.
type Lister struct {
	source   models.Source
	store    *staging.Store
	catalog  api.FileCatalog
	pageSize int
	logger   *zap.Logger
}

// NewLister creates a lister for one source and staging session.
func NewLister(source models.Source, store *staging.Store, catalog api.FileCatalog, pageSize int, logger *zap.Logger) *Lister {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Lister{
		source:   source,
		store:    store,
		catalog:  catalog,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Download counts the remote files, emits the total, then pages through every
// scan path. Persisting a page and fetching the next one overlap.
func (l *Lister) Download(ctx context.Context, events chan<- models.Event) error {
	total := 0
	for _, sp := range l.source.ScanPaths {
		n, err := l.catalog.CountFiles(ctx, l.query(sp))
		if err != nil {
			return err
		}
		total += n
	}
	if err := emit(ctx, events, models.Event{Type: models.EventTotal, Total: total}); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPendingBatches)

	downloaded := 0
	for _, sp := range l.source.ScanPaths {
		n, err := l.downloadScanPath(gctx, g, sp, events)
		downloaded += n
		if err != nil {
			if werr := g.Wait(); werr != nil {
				return werr
			}
			return err
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	l.logger.Debug("Remote listing finished",
		zap.String("source", l.source.Name),
		zap.Int("expected", total),
		zap.Int("files", downloaded),
	)
	return nil
}

func (l *Lister) downloadScanPath(ctx context.Context, g *errgroup.Group, sp models.ScanPath, events chan<- models.Event) (int, error) {
	q := l.query(sp)
	count := 0

	for start := 0; ; start += l.pageSize {
		files, page, err := l.catalog.ListFiles(ctx, q, start, l.pageSize)
		if err != nil {
			return count, err
		}
		count += len(files)

		if len(files) > 0 {
			batch := files
			g.Go(func() error {
				return l.persist(ctx, batch, events)
			})
		}

		if !page.HasMore() || len(files) == 0 {
			return count, nil
		}
	}
}

func (l *Lister) persist(ctx context.Context, files []models.File, events chan<- models.Event) error {
	items := make([]staging.Item, len(files))
	for i := range files {
		files[i].Normalize()
		items[i] = staging.Item{Key: files[i].Path, Value: files[i]}
	}

	if err := l.store.PutBatch(ctx, staging.Downloaded, items); err != nil {
		return fmt.Errorf("failed to stage remote files: %w", err)
	}

	for i := range files {
		if err := emit(ctx, events, models.Event{Type: models.EventFileDownloaded, Path: files[i].Path, File: &files[i]}); err != nil {
			return err
		}
	}
	return emit(ctx, events, models.Event{Type: models.EventBatchDownloaded, Files: files})
}

func (l *Lister) query(sp models.ScanPath) api.FileQuery {
	return api.FileQuery{SourceID: l.source.ID, Directory: sp.Path}
}

func emit(ctx context.Context, events chan<- models.Event, ev models.Event) error {
	if events == nil {
		return nil
	}
	select {
	case events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
