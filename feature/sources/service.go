package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"lair-scanner/core/api"
	"lair-scanner/core/models"

	"go.uber.org/zap"
)

// Categories are the media categories a scan path may hold.
var Categories = []string{"anime", "book", "magazine", "manga", "movie", "show"}

var (
	// ErrInvalidCategory is returned for a scan path category outside Categories.
	ErrInvalidCategory = errors.New("invalid scan path category")
	// ErrScanPathNotFound is returned when removing a scan path a source does not have.
	ErrScanPathNotFound = errors.New("scan path not found")
	// ErrScanPathExists is returned when adding a scan path twice.
	ErrScanPathExists = errors.New("scan path already exists")
	// ErrNameTaken is returned when adding a source whose name is in use.
	ErrNameTaken = errors.New("source name already taken")
)

// API is the subset of the Lair API used to manage sources.
type API interface {
	api.SourceCatalog
	api.ScannerRegistry
	api.FileCatalog
}

// Service manages sources and the scanner identity they are located by.
type Service struct {
	client    API
	scannerID string
	logger    *zap.Logger

	mu      sync.Mutex
	scanner *models.Scanner
}

// NewService creates a source service. An empty scannerID registers a new
// scanner on first use.
func NewService(client API, scannerID string, logger *zap.Logger) *Service {
	return &Service{
		client:    client,
		scannerID: scannerID,
		logger:    logger,
	}
}

// Scanner returns the scanner identity of this machine.
func (s *Service) Scanner(ctx context.Context) (*models.Scanner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanner != nil {
		return s.scanner, nil
	}

	if s.scannerID != "" {
		scanner, err := s.client.RetrieveScanner(ctx, s.scannerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load scanner %s: %w", s.scannerID, err)
		}
		s.scanner = scanner
		return scanner, nil
	}

	scanner, err := s.client.CreateScanner(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("Registered a new scanner, set LAIR_SCANNER_API_SCANNER_ID to reuse it",
		zap.String("scanner_id", scanner.ID))
	s.scanner = scanner
	s.scannerID = scanner.ID
	return scanner, nil
}

// Resolve returns the named sources, or all sources when no name is given,
// with their local paths attached. Every name must exist.
func (s *Service) Resolve(ctx context.Context, names ...string) ([]models.Source, error) {
	scanner, err := s.Scanner(ctx)
	if err != nil {
		return nil, err
	}

	sources, err := s.client.FindSources(ctx, names...)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range names {
		if !slices.ContainsFunc(sources, func(src models.Source) bool { return src.Name == name }) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("media sources %s: %w", strings.Join(missing, ", "), api.ErrNotFound)
	}

	for i := range sources {
		sources[i].LocalPath = scanner.Properties.SourcePaths[sources[i].ID]
	}
	return sources, nil
}

// Status describes a source for display.
type Status struct {
	Source models.Source
	// Files is the number of files the server knows for the source.
	Files int
}

// Status returns the named sources, or all of them, with their remote file counts.
func (s *Service) Status(ctx context.Context, names ...string) ([]Status, error) {
	sources, err := s.Resolve(ctx, names...)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(sources))
	for _, src := range sources {
		n, err := s.client.CountFiles(ctx, api.FileQuery{SourceID: src.ID})
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, Status{Source: src, Files: n})
	}
	return statuses, nil
}

// Add registers a new source located at localPath on this machine.
func (s *Service) Add(ctx context.Context, name, localPath string) (*models.Source, error) {
	dir, err := checkDir(localPath)
	if err != nil {
		return nil, err
	}

	_, err = s.client.FindSource(ctx, name)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
	case !errors.Is(err, api.ErrNotFound):
		return nil, err
	}

	source, err := s.client.CreateSource(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.saveLocalPath(ctx, source, dir); err != nil {
		return nil, err
	}

	s.logger.Info("Added media source", zap.String("source", source.Name), zap.String("path", dir))
	return source, nil
}

// Locate changes the local directory of an existing source.
func (s *Service) Locate(ctx context.Context, name, localPath string) (*models.Source, error) {
	dir, err := checkDir(localPath)
	if err != nil {
		return nil, err
	}

	source, err := s.client.FindSource(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.saveLocalPath(ctx, source, dir); err != nil {
		return nil, err
	}
	return source, nil
}

func (s *Service) saveLocalPath(ctx context.Context, source *models.Source, dir string) error {
	scanner, err := s.Scanner(ctx)
	if err != nil {
		return err
	}

	updated, err := s.client.UpdateScanner(ctx, scanner.ID, models.ScannerProperties{
		SourcePaths: map[string]string{source.ID: dir},
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.scanner = updated
	s.mu.Unlock()

	source.LocalPath = dir
	return nil
}

// AddScanPath adds a scan path to a source. The directory must exist under
// the local path of the source.
func (s *Service) AddScanPath(ctx context.Context, sourceName, path, category string) (*models.ScanPath, error) {
	if !slices.Contains(Categories, category) {
		return nil, fmt.Errorf("%w %q, expected one of %s", ErrInvalidCategory, category, strings.Join(Categories, "/"))
	}

	sources, err := s.Resolve(ctx, sourceName)
	if err != nil {
		return nil, err
	}
	source := sources[0]

	path = models.SourcePath(path)
	if slices.ContainsFunc(source.ScanPaths, func(sp models.ScanPath) bool { return sp.Path == path }) {
		return nil, fmt.Errorf("%w: %s in %s", ErrScanPathExists, path, source.Name)
	}

	if source.LocalPath != "" {
		if _, err := checkDir(filepath.Join(source.LocalPath, filepath.FromSlash(path))); err != nil {
			return nil, err
		}
	}

	return s.client.CreateScanPath(ctx, source.ID, models.ScanPath{Path: path, Category: category})
}

// RemoveScanPath removes a scan path from a source.
func (s *Service) RemoveScanPath(ctx context.Context, sourceName, path string) error {
	source, err := s.client.FindSource(ctx, sourceName)
	if err != nil {
		return err
	}

	path = models.SourcePath(path)
	i := slices.IndexFunc(source.ScanPaths, func(sp models.ScanPath) bool { return sp.Path == path })
	if i < 0 {
		return fmt.Errorf("%w: %s in %s", ErrScanPathNotFound, path, source.Name)
	}

	return s.client.DeleteScanPath(ctx, source.ID, source.ScanPaths[i].ID)
}

// checkDir returns the absolute form of path after making sure it is a directory.
func checkDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%s does not exist or is not accessible: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
