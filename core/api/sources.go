package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"lair-scanner/core/models"
)

// sourcesPageSize is the page size used to list all sources.
const sourcesPageSize = 100

// FindSource returns the source of the current user with the given name,
// including its scan paths. It returns ErrNotFound if there is none.
func (c *Client) FindSource(ctx context.Context, name string) (*models.Source, error) {
	var sources []models.Source
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/media/sources",
		query: url.Values{
			"mine":    {"1"},
			"include": {"scanPaths"},
			"name":    {name},
			"number":  {"1"},
		},
		expected:  http.StatusOK,
		operation: fmt.Sprintf("find media source %q", name),
		out:       &sources,
	})
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("media source %q: %w", name, ErrNotFound)
	}
	return &sources[0], nil
}

// FindSources returns all sources of the current user, optionally restricted
// to the given names, following pagination until the last page.
func (c *Client) FindSources(ctx context.Context, names ...string) ([]models.Source, error) {
	var all []models.Source

	for start := 0; ; start += sourcesPageSize {
		query := url.Values{
			"mine":    {"1"},
			"include": {"scanPaths"},
			"start":   {strconv.Itoa(start)},
			"number":  {strconv.Itoa(sourcesPageSize)},
		}
		for _, name := range names {
			query.Add("name[]", name)
		}

		var page []models.Source
		header, err := c.do(ctx, request{
			method:    http.MethodGet,
			path:      "/media/sources",
			query:     query,
			expected:  http.StatusOK,
			operation: "find media sources",
			out:       &page,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		p, err := ParsePagination(header)
		if errors.Is(err, ErrNoPagination) {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
		if !p.HasMore() || len(page) == 0 {
			return all, nil
		}
	}
}

// CreateSource registers a new source.
func (c *Client) CreateSource(ctx context.Context, name string) (*models.Source, error) {
	var source models.Source
	_, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/media/sources",
		body:      map[string]string{"name": name},
		expected:  http.StatusCreated,
		operation: fmt.Sprintf("create media source %q", name),
		out:       &source,
	})
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// UpdateSource replaces the properties of a source.
func (c *Client) UpdateSource(ctx context.Context, id string, props models.SourceProperties) (*models.Source, error) {
	var source models.Source
	_, err := c.do(ctx, request{
		method:    http.MethodPatch,
		path:      "/media/sources/" + url.PathEscape(id),
		body:      map[string]any{"properties": props},
		expected:  http.StatusOK,
		operation: "update media source " + id,
		out:       &source,
	})
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// CreateScanPath adds a scan path to a source.
func (c *Client) CreateScanPath(ctx context.Context, sourceID string, scanPath models.ScanPath) (*models.ScanPath, error) {
	var created models.ScanPath
	_, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/media/sources/" + url.PathEscape(sourceID) + "/scanPaths",
		body:      scanPath,
		expected:  http.StatusCreated,
		operation: fmt.Sprintf("create scan path %s for media source %s", scanPath.Path, sourceID),
		out:       &created,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteScanPath removes a scan path from a source.
func (c *Client) DeleteScanPath(ctx context.Context, sourceID, scanPathID string) error {
	_, err := c.do(ctx, request{
		method:    http.MethodDelete,
		path:      "/media/sources/" + url.PathEscape(sourceID) + "/scanPaths/" + url.PathEscape(scanPathID),
		expected:  http.StatusNoContent,
		operation: fmt.Sprintf("delete scan path %s of media source %s", scanPathID, sourceID),
	})
	return err
}
