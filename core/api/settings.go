package api

import (
	"context"
	"net/http"

	"lair-scanner/core/models"
)

// GetSettings fetches the global media settings.
func (c *Client) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	_, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      "/media/settings",
		expected:  http.StatusOK,
		operation: "retrieve media settings",
		out:       &settings,
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings replaces the global media settings.
func (c *Client) UpdateSettings(ctx context.Context, settings models.Settings) (*models.Settings, error) {
	if settings.Ignores == nil {
		settings.Ignores = []string{}
	}

	var updated models.Settings
	_, err := c.do(ctx, request{
		method:    http.MethodPatch,
		path:      "/media/settings",
		body:      settings,
		expected:  http.StatusOK,
		operation: "update media settings",
		out:       &updated,
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
