package api

import (
	"context"
	"net/http"
	"net/url"

	"lair-scanner/core/models"
)

// CreateScanner registers this client as a new scanner.
func (c *Client) CreateScanner(ctx context.Context) (*models.Scanner, error) {
	var scanner models.Scanner
	_, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/media/scanners",
		body:      map[string]any{},
		expected:  http.StatusCreated,
		operation: "create media scanner",
		out:       &scanner,
	})
	if err != nil {
		return nil, err
	}
	return &scanner, nil
}

// RetrieveScanner fetches a scanner by ID.
func (c *Client) RetrieveScanner(ctx context.Context, id string) (*models.Scanner, error) {
	var scanner models.Scanner
	_, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      "/media/scanners/" + url.PathEscape(id),
		expected:  http.StatusOK,
		operation: "retrieve media scanner " + id,
		out:       &scanner,
	})
	if err != nil {
		return nil, err
	}
	return &scanner, nil
}

// UpdateScanner merges properties into a scanner.
func (c *Client) UpdateScanner(ctx context.Context, id string, props models.ScannerProperties) (*models.Scanner, error) {
	var scanner models.Scanner
	_, err := c.do(ctx, request{
		method:    http.MethodPatch,
		path:      "/media/scanners/" + url.PathEscape(id),
		body:      map[string]any{"properties": props},
		expected:  http.StatusOK,
		operation: "update media scanner " + id,
		out:       &scanner,
	})
	if err != nil {
		return nil, err
	}
	return &scanner, nil
}
