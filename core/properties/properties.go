package properties

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrMalformed marks metadata that could not be interpreted.
var ErrMalformed = errors.New("malformed metadata")

// ExtractFunc turns the content of a file into properties.
// It returns an error wrapping ErrMalformed when the content cannot be interpreted.
type ExtractFunc func(content []byte) (map[string]any, error)

// Registry maps lowercase file extensions (with the dot) to extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]ExtractFunc
	logger     *zap.Logger
}

// NewRegistry creates a registry with the built-in extractors.
// yamlFields restricts the keys kept from YAML files; empty keeps all of them.
func NewRegistry(logger *zap.Logger, yamlFields []string) *Registry {
	r := &Registry{
		extractors: make(map[string]ExtractFunc),
		logger:     logger,
	}

	r.Register(".nfo", ExtractNFO)
	yml := YAMLExtractor(yamlFields)
	r.Register(".yml", yml)
	r.Register(".yaml", yml)

	return r
}

// Register adds or replaces the extractor for an extension.
func (r *Registry) Register(ext string, fn ExtractFunc) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	r.mu.Lock()
	r.extractors[ext] = fn
	r.mu.Unlock()
}

// Supports reports whether an extractor exists for the file.
func (r *Registry) Supports(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract returns the properties of the file at path.
// Only read failures are returned as errors.
func (r *Registry) Extract(path string) (map[string]any, error) {
	r.mu.RLock()
	fn, ok := r.extractors[strings.ToLower(filepath.Ext(path))]
	r.mu.RUnlock()

	if !ok {
		return map[string]any{}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	props, err := fn(content)
	if err != nil {
		r.logger.Warn("Ignoring malformed metadata file", zap.String("path", path), zap.Error(err))
		return map[string]any{}, nil
	}
	if props == nil {
		props = map[string]any{}
	}
	return props, nil
}
