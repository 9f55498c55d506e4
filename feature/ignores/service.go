// Package ignores manages the glob patterns excluded from scans, either
// globally through the user's media settings or per source.
package ignores

import (
	"context"
	"slices"

	"lair-scanner/core/api"
	"lair-scanner/core/ignore"

	"go.uber.org/zap"
)

// API is the subset of the Lair API used to manage ignore patterns.
type API interface {
	api.SettingsStore
	api.SourceCatalog
}

// Service lists, adds and removes ignore patterns.
type Service struct {
	client API
	logger *zap.Logger
}

// NewService creates an ignore pattern service.
func NewService(client API, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// List returns the global patterns, or those of the named source.
func (s *Service) List(ctx context.Context, source string) ([]string, error) {
	if source != "" {
		src, err := s.client.FindSource(ctx, source)
		if err != nil {
			return nil, err
		}
		return src.Properties.Ignores, nil
	}

	settings, err := s.client.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return settings.Ignores, nil
}

// Add appends patterns that are not yet ignored and returns the resulting list.
func (s *Service) Add(ctx context.Context, source string, patterns ...string) ([]string, error) {
	if _, err := ignore.New(patterns, nil); err != nil {
		return nil, err
	}
	return s.update(ctx, source, func(current []string) []string {
		return union(current, patterns)
	})
}

// Remove drops patterns and returns the resulting list.
func (s *Service) Remove(ctx context.Context, source string, patterns ...string) ([]string, error) {
	return s.update(ctx, source, func(current []string) []string {
		return slices.DeleteFunc(slices.Clone(current), func(p string) bool {
			return slices.Contains(patterns, p)
		})
	})
}

func (s *Service) update(ctx context.Context, source string, apply func([]string) []string) ([]string, error) {
	if source != "" {
		src, err := s.client.FindSource(ctx, source)
		if err != nil {
			return nil, err
		}

		props := src.Properties
		props.Ignores = apply(props.Ignores)
		updated, err := s.client.UpdateSource(ctx, src.ID, props)
		if err != nil {
			return nil, err
		}

		s.logger.Debug("Updated source ignores", zap.String("source", src.Name), zap.Strings("ignores", updated.Properties.Ignores))
		return updated.Properties.Ignores, nil
	}

	settings, err := s.client.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	settings.Ignores = apply(settings.Ignores)
	updated, err := s.client.UpdateSettings(ctx, *settings)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Updated global ignores", zap.Strings("ignores", updated.Ignores))
	return updated.Ignores, nil
}

// union appends the patterns missing from current, preserving order.
func union(current, patterns []string) []string {
	out := slices.Clone(current)
	for _, p := range patterns {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}
