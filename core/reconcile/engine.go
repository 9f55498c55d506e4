package reconcile

import (
	"context"
	"fmt"
	"sync"

	"lair-scanner/core/api"
	"lair-scanner/core/logger"
	"lair-scanner/core/models"
	"lair-scanner/core/staging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// eventBuffer is the capacity of each producer channel.
	eventBuffer = 64
	// maxPendingCompares bounds concurrent look-ups; producers block beyond it.
	maxPendingCompares = 16
	// sweepPageSize is the page size used to read leftover entries.
	sweepPageSize = 500
)

// Engine reconciles one source within one staging session.
type Engine struct {
	store     *staging.Store
	recorder  api.ScanRecorder
	local     LocalProducer
	remote    RemoteProducer
	batchSize int
	logger    *zap.Logger
}

// NewEngine wires the producers and the scan recorder around a staging store.
func NewEngine(store *staging.Store, recorder api.ScanRecorder, local LocalProducer, remote RemoteProducer, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		store:     store,
		recorder:  recorder,
		local:     local,
		remote:    remote,
		batchSize: cfg.UploadBatchSize,
		logger:    logger,
	}
}

// run holds the state of a single Run call.
type run struct {
	*Engine
	source   models.Source
	opts     Options
	progress Progress
	batcher  *Batcher
	scanID   string

	mu         sync.Mutex
	summary    Summary
	classified map[string]struct{}
}

// Run scans both sides of the source concurrently, classifies every path and
// uploads the changes. Any producer, comparison, store or upload failure
// aborts the run.
func (e *Engine) Run(ctx context.Context, source models.Source, opts Options) (*Summary, error) {
	r := &run{
		Engine:     e,
		source:     source,
		opts:       opts,
		classified: make(map[string]struct{}),
	}

	if !opts.DryRun {
		scan, err := e.recorder.CreateScan(ctx, source.ID, opts.ScannerID)
		if err != nil {
			return nil, err
		}
		r.scanID = scan.ID
	}

	uploadCtx, cancelUploads := context.WithCancel(ctx)
	defer cancelUploads()

	r.batcher = NewBatcher(uploadCtx, e.store, func(ctx context.Context, changes []models.Payload) error {
		return e.recorder.AddScanChanges(ctx, r.scanID, changes)
	}, e.batchSize, e.logger)

	summary, err := r.execute(ctx)
	if err != nil {
		cancelUploads()
		r.batcher.Wait()
		return nil, err
	}
	return summary, nil
}

func (r *run) execute(ctx context.Context) (*Summary, error) {
	log := logger.WithScan(r.logger, r.source.Name, r.scanID)
	log.Info("Starting scan", zap.Bool("dry_run", r.opts.DryRun))

	files, err := r.produce(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.sweep(ctx); err != nil {
		return nil, err
	}

	if !r.opts.DryRun {
		if err := r.batcher.Drain(ctx); err != nil {
			return nil, err
		}

		_, err := r.recorder.UpdateScan(ctx, r.scanID, api.ScanUpdate{State: models.ScanStateScanned, FilesCount: files})
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	summary := r.summary
	r.mu.Unlock()

	summary.ScanID = r.scanID
	summary.Files = files
	summary.Uploaded = r.batcher.Uploaded()

	log.Info("Scan completed",
		zap.Int("files", summary.Files),
		zap.Int("added", summary.Added),
		zap.Int("modified", summary.Modified),
		zap.Int("deleted", summary.Deleted),
		zap.Int("identical", summary.Identical),
		zap.Int("uploaded", summary.Uploaded),
	)
	return &summary, nil
}

// produce runs both producers and the event loop until both producers are
// exhausted and every look-up they triggered has completed.
func (r *run) produce(ctx context.Context) (int, error) {
	g, gctx := errgroup.WithContext(ctx)

	localEvents := make(chan models.Event, eventBuffer)
	remoteEvents := make(chan models.Event, eventBuffer)

	var files int
	g.Go(func() error {
		defer close(localEvents)
		n, err := r.local.Scan(gctx, localEvents)
		if err != nil {
			return fmt.Errorf("local scan failed: %w", err)
		}
		files = n
		return nil
	})

	g.Go(func() error {
		defer close(remoteEvents)
		if err := r.remote.Download(gctx, remoteEvents); err != nil {
			return fmt.Errorf("remote listing failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return r.consume(gctx, localEvents, remoteEvents)
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return files, nil
}

// consume dispatches producer events until both channels are closed, then
// waits for the pending look-ups.
func (r *run) consume(ctx context.Context, local, remote <-chan models.Event) error {
	pending, pctx := errgroup.WithContext(ctx)
	pending.SetLimit(maxPendingCompares)

	for local != nil || remote != nil {
		select {
		case ev, ok := <-local:
			if !ok {
				local = nil
				continue
			}
			r.dispatch(pctx, pending, ev)
		case ev, ok := <-remote:
			if !ok {
				remote = nil
				continue
			}
			r.dispatch(pctx, pending, ev)
		case <-pctx.Done():
			if err := pending.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		}
	}

	return pending.Wait()
}

func (r *run) dispatch(ctx context.Context, pending *errgroup.Group, ev models.Event) {
	r.progress.Observe(ev)
	if r.opts.Observer != nil {
		r.opts.Observer(ev, r.progress.Fraction())
	}

	switch ev.Type {
	case models.EventFileScanned:
		path := ev.Path
		pending.Go(func() error {
			return r.match(ctx, path)
		})
	case models.EventBatchDownloaded:
		paths := make([]string, len(ev.Files))
		for i, f := range ev.Files {
			paths[i] = f.Path
		}
		pending.Go(func() error {
			for _, path := range paths {
				if err := r.match(ctx, path); err != nil {
					return err
				}
			}
			return nil
		})
	}
}

// match compares a path if both sides have staged it. The path is removed
// from both partitions before it is classified.
func (r *run) match(ctx context.Context, path string) error {
	pair, err := r.store.Match(ctx, path, staging.Scanned, staging.Downloaded)
	if err != nil {
		return err
	}
	if pair == nil {
		return nil
	}

	var local, remote models.File
	if err := pair.Left.Decode(&local); err != nil {
		return err
	}
	if err := pair.Right.Decode(&remote); err != nil {
		return err
	}

	return r.classify(ctx, Compare(local, remote))
}

// sweep classifies the entries left on a single side.
func (r *run) sweep(ctx context.Context) error {
	err := r.store.Stream(ctx, staging.Scanned, sweepPageSize, func(e staging.Entry) error {
		var f models.File
		if err := e.Decode(&f); err != nil {
			return err
		}
		return r.classify(ctx, models.Change{Path: e.Key, Kind: models.ChangeAdded, File: &f})
	})
	if err != nil {
		return err
	}
	if err := r.store.DeleteRange(ctx, staging.Scanned); err != nil {
		return err
	}

	err = r.store.Stream(ctx, staging.Downloaded, sweepPageSize, func(e staging.Entry) error {
		return r.classify(ctx, models.Change{Path: e.Key, Kind: models.ChangeDeleted})
	})
	if err != nil {
		return err
	}
	return r.store.DeleteRange(ctx, staging.Downloaded)
}

// classify counts a change, keeps it for the report and queues it for upload.
func (r *run) classify(ctx context.Context, change models.Change) error {
	r.mu.Lock()
	if _, seen := r.classified[change.Path]; seen {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateClassification, change.Path)
	}
	r.classified[change.Path] = struct{}{}
	r.summary.count(change.Kind)
	r.mu.Unlock()

	identical := change.Kind == models.ChangeIdentical

	if !identical || r.opts.ListIdentical {
		if err := r.store.Put(ctx, staging.Changed, change.Path, change); err != nil {
			return err
		}
	}

	if r.opts.DryRun || (identical && !r.opts.UploadIdentical) {
		return nil
	}
	return r.batcher.Enqueue(ctx, change)
}
