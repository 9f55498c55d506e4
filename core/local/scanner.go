package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"lair-scanner/core/ignore"
	"lair-scanner/core/models"
	"lair-scanner/core/properties"
	"lair-scanner/core/staging"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxDepth bounds the traversal of a scan path. Directories are listed
// down to depth DefaultMaxDepth-2, the scan path itself being depth 0.
const DefaultMaxDepth = 10

// ErrNoLocalPath is returned when a source has no local directory on this machine.
var ErrNoLocalPath = errors.New("source has no local path")

// Options configures a Scanner.
type Options struct {
	// MaxDepth limits recursion: a directory at depth d is listed while
	// d < MaxDepth-1. Scan path roots are always listed.
	MaxDepth int
	// Ignores filters entries. Nil disables filtering.
	Ignores *ignore.Matcher
	// Properties extracts file metadata. Nil yields empty properties.
	Properties *properties.Registry
}

// Scanner stages the local files of a source.
type Scanner struct {
	source models.Source
	store  *staging.Store
	opts   Options
	logger *zap.Logger

	mu   sync.Mutex
	dirs map[string][]string
	sf   singleflight.Group
}

// NewScanner creates a scanner for one source and staging session.
func NewScanner(source models.Source, store *staging.Store, opts Options, logger *zap.Logger) *Scanner {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Scanner{
		source: source,
		store:  store,
		opts:   opts,
		logger: logger,
		dirs:   make(map[string][]string),
	}
}

// state is the position of the traversal. It is passed by value.
type state struct {
	// abs is the filesystem path.
	abs string
	// path is the source-relative path.
	path string
	// depth is 0 for a scan path root.
	depth int
}

func (s state) child(name string) state {
	return state{
		abs:   filepath.Join(s.abs, name),
		path:  models.SourcePath(s.path, name),
		depth: s.depth + 1,
	}
}

// Scan walks every scan path and returns the number of files staged.
// Events are sent to events, which is not closed.
func (s *Scanner) Scan(ctx context.Context, events chan<- models.Event) (int, error) {
	if s.source.LocalPath == "" {
		return 0, fmt.Errorf("%w: %s", ErrNoLocalPath, s.source.Name)
	}

	roots := make([]state, 0, len(s.source.ScanPaths))
	for _, sp := range s.source.ScanPaths {
		roots = append(roots, state{
			abs:  filepath.Join(s.source.LocalPath, filepath.FromSlash(sp.Path)),
			path: models.SourcePath(sp.Path),
		})
	}

	// List every root first so that first-level totals are known early
	for _, root := range roots {
		if _, err := s.list(ctx, root, events); err != nil {
			return 0, err
		}
	}

	count := 0
	for _, root := range roots {
		n, err := s.scanDir(ctx, root, events)
		count += n
		if err != nil {
			return count, err
		}
	}

	s.logger.Debug("Local scan finished", zap.String("source", s.source.Name), zap.Int("files", count))
	return count, nil
}

func (s *Scanner) scanDir(ctx context.Context, st state, events chan<- models.Event) (int, error) {
	names, err := s.list(ctx, st, events)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		child := st.child(name)
		info, err := os.Lstat(child.abs)
		if err != nil {
			return count, fmt.Errorf("failed to stat %s: %w", child.abs, err)
		}

		switch {
		case info.IsDir() && child.depth < s.opts.MaxDepth-1:
			n, err := s.scanDir(ctx, child, events)
			count += n
			if err != nil {
				return count, err
			}
		case info.Mode().IsRegular():
			if err := s.scanFile(ctx, child, info, events); err != nil {
				return count, err
			}
			count++
		default:
			if err := emit(ctx, events, models.Event{Type: models.EventEntrySkipped, Path: child.path, Depth: child.depth}); err != nil {
				return count, err
			}
		}
	}

	if err := emit(ctx, events, models.Event{Type: models.EventDirectoryScanned, Path: st.path, Depth: st.depth}); err != nil {
		return count, err
	}
	return count, nil
}

func (s *Scanner) scanFile(ctx context.Context, st state, info fs.FileInfo, events chan<- models.Event) error {
	if err := emit(ctx, events, models.Event{Type: models.EventFileScanning, Path: st.path, Depth: st.depth}); err != nil {
		return err
	}

	props := map[string]any{}
	if s.opts.Properties != nil {
		var err error
		if props, err = s.opts.Properties.Extract(st.abs); err != nil {
			return err
		}
	}

	file := models.File{
		Path:           st.path,
		Size:           info.Size(),
		FileCreatedAt:  createdAt(info),
		FileModifiedAt: info.ModTime(),
		Properties:     props,
	}
	file.Normalize()

	if err := s.store.Put(ctx, staging.Scanned, file.Path, file); err != nil {
		return err
	}

	return emit(ctx, events, models.Event{Type: models.EventFileScanned, Path: st.path, Depth: st.depth, File: &file})
}

// list returns the sorted, non-ignored entry names of a directory.
// Listings are cached for the lifetime of the scanner.
func (s *Scanner) list(ctx context.Context, st state, events chan<- models.Event) ([]string, error) {
	s.mu.Lock()
	names, ok := s.dirs[st.abs]
	s.mu.Unlock()
	if ok {
		return names, nil
	}

	v, err, _ := s.sf.Do(st.abs, func() (any, error) {
		if err := emit(ctx, events, models.Event{Type: models.EventDirectoryListing, Path: st.path, Depth: st.depth}); err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(st.abs)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", st.abs, err)
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			child := st.child(e.Name())
			if s.opts.Ignores != nil && s.opts.Ignores.Ignored(child.abs, child.path) {
				s.logger.Debug("Ignoring entry", zap.String("path", child.path))
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)

		s.mu.Lock()
		s.dirs[st.abs] = names
		s.mu.Unlock()

		if err := emit(ctx, events, models.Event{Type: models.EventDirectoryListed, Path: st.path, Depth: st.depth, Entries: len(names)}); err != nil {
			return nil, err
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
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
