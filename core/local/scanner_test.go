package local_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lair-scanner/core/ignore"
	"lair-scanner/core/local"
	"lair-scanner/core/models"
	"lair-scanner/core/properties"
	"lair-scanner/core/staging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var mtime = time.Date(2024, 1, 2, 3, 4, 5, 600_000_000, time.UTC)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

type collector struct {
	ch     chan models.Event
	wg     sync.WaitGroup
	events []models.Event
}

func collect() *collector {
	c := &collector{ch: make(chan models.Event)}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for ev := range c.ch {
			c.events = append(c.events, ev)
		}
	}()
	return c
}

func (c *collector) stop() []models.Event {
	close(c.ch)
	c.wg.Wait()
	return c.events
}

func filter(events []models.Event, typ models.EventType) []models.Event {
	var out []models.Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func openStore(t *testing.T) *staging.Store {
	t.Helper()
	store, err := staging.Open(staging.Config{Dir: t.TempDir()}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestScanner_Scan(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	writeFile(t, root, "Movies/a.mkv", "0123456789")
	writeFile(t, root, "Movies/a.nfo", "https://www.imdb.com/title/tt0111161/")
	writeFile(t, root, "Movies/Sub/b.mkv", "b")
	writeFile(t, root, "Movies/x.tmp", "tmp")
	writeFile(t, root, "Movies/.DS_Store", "")
	writeFile(t, root, "Movies/Trash/c.mkv", "c")
	writeFile(t, root, "Other/ignored.mkv", "not a scan path")

	matcher, err := ignore.New([]string{"**/.DS_Store", "**/*.tmp"}, []string{"/Movies/Trash"})
	require.NoError(t, err)

	store := openStore(t)
	logger := zaptest.NewLogger(t)
	source := models.Source{
		Name:      "media",
		LocalPath: root,
		ScanPaths: []models.ScanPath{{Path: "/Movies"}},
	}

	scanner := local.NewScanner(source, store, local.Options{
		Ignores:    matcher,
		Properties: properties.NewRegistry(logger, nil),
	}, logger)

	c := collect()
	count, err := scanner.Scan(ctx, c.ch)
	events := c.stop()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	staged, err := store.List(ctx, staging.Scanned, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"/Movies/Sub/b.mkv", "/Movies/a.mkv", "/Movies/a.nfo"}, staging.Keys(staged))

	var a models.File
	found, err := store.Get(ctx, staging.Scanned, "/Movies/a.mkv", &a)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(10), a.Size)
	assert.Equal(t, mtime.Truncate(time.Second), a.FileModifiedAt)
	assert.Empty(t, a.Properties)

	var nfo models.File
	_, err = store.Get(ctx, staging.Scanned, "/Movies/a.nfo", &nfo)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"url": "https://www.imdb.com/title/tt0111161/"}, nfo.Properties)

	t.Run("Events", func(t *testing.T) {
		listed := filter(events, models.EventDirectoryListed)
		require.NotEmpty(t, listed)
		assert.Equal(t, "/Movies", listed[0].Path)
		assert.Equal(t, 0, listed[0].Depth)
		// Sub, a.mkv, a.nfo
		assert.Equal(t, 3, listed[0].Entries)

		// Root listed once despite the initial listing pass
		rootListings := 0
		for _, ev := range filter(events, models.EventDirectoryListing) {
			if ev.Path == "/Movies" {
				rootListings++
			}
		}
		assert.Equal(t, 1, rootListings)

		scanned := filter(events, models.EventFileScanned)
		require.Len(t, scanned, 3)
		for _, ev := range scanned {
			require.NotNil(t, ev.File)
			assert.Equal(t, ev.Path, ev.File.Path)
		}

		for _, ev := range filter(events, models.EventDirectoryScanned) {
			if ev.Path == "/Movies/Sub" {
				assert.Equal(t, 1, ev.Depth)
			}
		}
	})
}

func TestScanner_MaxDepth(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	writeFile(t, root, "top.mkv", "")
	writeFile(t, root, "d1/one.mkv", "")
	writeFile(t, root, "d1/d2/two.mkv", "")
	writeFile(t, root, "d1/d2/d3/three.mkv", "")

	tests := []struct {
		name     string
		maxDepth int
		staged   []string
		skipped  string
	}{
		{name: "RootOnly", maxDepth: 1, staged: []string{"/top.mkv"}, skipped: "/d1"},
		{name: "OneLevel", maxDepth: 2, staged: []string{"/top.mkv"}, skipped: "/d1"},
		{name: "TwoLevels", maxDepth: 3, staged: []string{"/d1/one.mkv", "/top.mkv"}, skipped: "/d1/d2"},
		{name: "ThreeLevels", maxDepth: 4, staged: []string{"/d1/d2/two.mkv", "/d1/one.mkv", "/top.mkv"}, skipped: "/d1/d2/d3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore(t)
			source := models.Source{Name: "media", LocalPath: root, ScanPaths: []models.ScanPath{{Path: "/"}}}
			scanner := local.NewScanner(source, store, local.Options{MaxDepth: tt.maxDepth}, zaptest.NewLogger(t))

			c := collect()
			count, err := scanner.Scan(ctx, c.ch)
			events := c.stop()
			require.NoError(t, err)
			assert.Equal(t, len(tt.staged), count)

			staged, err := store.List(ctx, staging.Scanned, "", 0)
			require.NoError(t, err)
			assert.Equal(t, tt.staged, staging.Keys(staged))

			skipped := filter(events, models.EventEntrySkipped)
			require.Len(t, skipped, 1)
			assert.Equal(t, tt.skipped, skipped[0].Path)
		})
	}

	t.Run("Default", func(t *testing.T) {
		deep := t.TempDir()
		// depth 8 is the deepest listed directory
		writeFile(t, deep, "1/2/3/4/5/6/7/8/listed.mkv", "")
		writeFile(t, deep, "1/2/3/4/5/6/7/8/9/unlisted.mkv", "")

		store := openStore(t)
		source := models.Source{Name: "media", LocalPath: deep, ScanPaths: []models.ScanPath{{Path: "/"}}}
		scanner := local.NewScanner(source, store, local.Options{}, zaptest.NewLogger(t))

		count, err := scanner.Scan(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		found, err := store.Get(ctx, staging.Scanned, "/1/2/3/4/5/6/7/8/listed.mkv", nil)
		require.NoError(t, err)
		assert.True(t, found)
	})
}

func TestScanner_Errors(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	t.Run("NoLocalPath", func(t *testing.T) {
		scanner := local.NewScanner(models.Source{Name: "media"}, store, local.Options{}, zaptest.NewLogger(t))
		_, err := scanner.Scan(ctx, nil)
		assert.ErrorIs(t, err, local.ErrNoLocalPath)
	})

	t.Run("MissingScanPath", func(t *testing.T) {
		source := models.Source{
			Name:      "media",
			LocalPath: t.TempDir(),
			ScanPaths: []models.ScanPath{{Path: "/missing"}},
		}
		scanner := local.NewScanner(source, store, local.Options{}, zaptest.NewLogger(t))
		_, err := scanner.Scan(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("ClosedStore", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "a.mkv", "")

		closed, err := staging.Open(staging.Config{Dir: t.TempDir()}, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NoError(t, closed.Close())

		source := models.Source{Name: "media", LocalPath: root, ScanPaths: []models.ScanPath{{Path: "/"}}}
		scanner := local.NewScanner(source, closed, local.Options{}, zaptest.NewLogger(t))
		_, err = scanner.Scan(ctx, nil)
		assert.ErrorIs(t, err, staging.ErrClosed)
	})
}
