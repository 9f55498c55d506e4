package reconcile

import (
	"context"
	"fmt"
	"sync"

	"lair-scanner/core/models"
	"lair-scanner/core/staging"

	"go.uber.org/zap"
)

// UploadFunc sends a batch of changes to the server.
type UploadFunc func(ctx context.Context, changes []models.Payload) error

// Batcher queues changes in the upload-queue partition and uploads them in
// batches. At most one flush is in flight at any time.
type Batcher struct {
	ctx    context.Context
	store  *staging.Store
	upload UploadFunc
	size   int
	logger *zap.Logger

	mu       sync.Mutex
	queued   int
	flushing bool
	uploaded int
	batches  int
	err      error
	inflight sync.WaitGroup
}

// NewBatcher creates a batcher. Asynchronous flushes run with ctx.
func NewBatcher(ctx context.Context, store *staging.Store, upload UploadFunc, size int, logger *zap.Logger) *Batcher {
	if size <= 0 {
		size = 100
	}
	return &Batcher{
		ctx:    ctx,
		store:  store,
		upload: upload,
		size:   size,
		logger: logger,
	}
}

// Enqueue stages a change for upload and starts a flush when a full batch is queued.
// It returns the error of a previously failed flush.
func (b *Batcher) Enqueue(ctx context.Context, change models.Change) error {
	if err := b.Err(); err != nil {
		return err
	}

	if err := b.store.Put(ctx, staging.UploadQueue, change.Path, change.Payload()); err != nil {
		return err
	}

	b.mu.Lock()
	b.queued++
	b.maybeFlushLocked()
	b.mu.Unlock()
	return nil
}

// maybeFlushLocked must be called with b.mu held.
func (b *Batcher) maybeFlushLocked() {
	if b.flushing || b.err != nil || b.queued < b.size {
		return
	}

	b.flushing = true
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()

		n, err := b.flush(b.ctx, b.size)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.flushing = false
		b.record(n, err)
		b.maybeFlushLocked()
	}()
}

// record must be called with b.mu held.
func (b *Batcher) record(n int, err error) {
	b.queued -= n
	b.uploaded += n
	if n > 0 {
		b.batches++
	}
	if err != nil && b.err == nil {
		b.err = err
	}
}

// flush uploads up to limit queued changes and removes them from the queue
// once the upload succeeded.
func (b *Batcher) flush(ctx context.Context, limit int) (int, error) {
	entries, err := b.store.List(ctx, staging.UploadQueue, "", limit)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	payloads := make([]models.Payload, len(entries))
	for i, e := range entries {
		if err := e.Decode(&payloads[i]); err != nil {
			return 0, err
		}
	}

	if err := b.upload(ctx, payloads); err != nil {
		return 0, fmt.Errorf("failed to upload %d changes: %w", len(payloads), err)
	}

	if err := b.store.Delete(ctx, staging.UploadQueue, staging.Keys(entries)...); err != nil {
		return 0, err
	}

	b.logger.Debug("Uploaded changes", zap.Int("count", len(payloads)))
	return len(entries), nil
}

// Wait blocks until the in-flight flush, if any, has completed.
func (b *Batcher) Wait() {
	b.inflight.Wait()
}

// Drain waits for the in-flight flush then uploads everything left in the
// queue. No change may be enqueued concurrently.
func (b *Batcher) Drain(ctx context.Context) error {
	b.Wait()
	if err := b.Err(); err != nil {
		return err
	}

	for {
		n, err := b.flush(ctx, b.size)

		b.mu.Lock()
		b.record(n, err)
		b.mu.Unlock()

		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

// Err returns the first flush failure.
func (b *Batcher) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Uploaded returns the number of changes accepted by the server.
func (b *Batcher) Uploaded() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploaded
}

// Batches returns the number of successful upload requests.
func (b *Batcher) Batches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batches
}
