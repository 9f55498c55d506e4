package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"lair-scanner/core/models"
	"lair-scanner/core/staging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openStore(t *testing.T) *staging.Store {
	t.Helper()
	store, err := staging.Open(staging.Config{Dir: t.TempDir()}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type recordingUploader struct {
	mu      sync.Mutex
	batches [][]models.Payload
}

func (u *recordingUploader) upload(_ context.Context, changes []models.Payload) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.batches = append(u.batches, changes)
	return nil
}

func (u *recordingUploader) paths() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	var paths []string
	for _, b := range u.batches {
		for _, p := range b {
			paths = append(paths, p.Path)
		}
	}
	return paths
}

func added(i int) models.Change {
	return models.Change{
		Path: fmt.Sprintf("/Movies/%02d.mkv", i),
		Kind: models.ChangeAdded,
		File: &models.File{Path: fmt.Sprintf("/Movies/%02d.mkv", i), Size: int64(i)},
	}
}

func TestBatcher_FlushesFullBatches(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	uploader := &recordingUploader{}
	b := NewBatcher(ctx, store, uploader.upload, 2, zaptest.NewLogger(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Enqueue(ctx, added(i)))
	}
	require.NoError(t, b.Drain(ctx))

	assert.Equal(t, 5, b.Uploaded())
	assert.Equal(t, 3, b.Batches())
	assert.ElementsMatch(t, []string{"/Movies/00.mkv", "/Movies/01.mkv", "/Movies/02.mkv", "/Movies/03.mkv", "/Movies/04.mkv"}, uploader.paths())
	for _, batch := range uploader.batches {
		assert.LessOrEqual(t, len(batch), 2)
	}

	count, err := store.Count(ctx, staging.UploadQueue)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBatcher_BelowThresholdWaitsForDrain(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	uploader := &recordingUploader{}
	b := NewBatcher(ctx, store, uploader.upload, 10, zaptest.NewLogger(t))

	require.NoError(t, b.Enqueue(ctx, added(1)))
	require.NoError(t, b.Enqueue(ctx, added(2)))
	b.Wait()
	assert.Zero(t, b.Batches())

	require.NoError(t, b.Drain(ctx))
	assert.Equal(t, 1, b.Batches())
	assert.Equal(t, 2, b.Uploaded())
}

func TestBatcher_SingleFlushInFlight(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	var (
		current atomic.Int32
		peak    atomic.Int32
		calls   atomic.Int32
	)
	release := make(chan struct{})
	upload := func(_ context.Context, changes []models.Payload) error {
		n := current.Add(1)
		defer current.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		calls.Add(1)
		<-release
		return nil
	}

	b := NewBatcher(ctx, store, upload, 1, zaptest.NewLogger(t))
	for i := 0; i < 6; i++ {
		require.NoError(t, b.Enqueue(ctx, added(i)))
	}
	close(release)
	require.NoError(t, b.Drain(ctx))

	assert.Equal(t, int32(1), peak.Load())
	assert.Equal(t, 6, b.Uploaded())
	assert.Equal(t, int32(6), calls.Load())
}

func TestBatcher_FailedUploadKeepsQueue(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	boom := errors.New("boom")

	b := NewBatcher(ctx, store, func(context.Context, []models.Payload) error { return boom }, 2, zaptest.NewLogger(t))
	require.NoError(t, b.Enqueue(ctx, added(1)))
	require.NoError(t, b.Enqueue(ctx, added(2)))
	b.Wait()

	require.ErrorIs(t, b.Err(), boom)
	assert.ErrorIs(t, b.Enqueue(ctx, added(3)), boom)
	assert.ErrorIs(t, b.Drain(ctx), boom)
	assert.Zero(t, b.Uploaded())

	count, err := store.Count(ctx, staging.UploadQueue)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestBatcher_DeletionsCarryPathOnly(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	uploader := &recordingUploader{}
	b := NewBatcher(ctx, store, uploader.upload, 10, zaptest.NewLogger(t))

	require.NoError(t, b.Enqueue(ctx, models.Change{Path: "/Movies/gone.mkv", Kind: models.ChangeDeleted}))
	require.NoError(t, b.Drain(ctx))

	require.Len(t, uploader.batches, 1)
	assert.Equal(t, []models.Payload{{Path: "/Movies/gone.mkv", Type: models.ChangeDeleted}}, uploader.batches[0])
}
