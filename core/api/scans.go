package api

import (
	"context"
	"net/http"
	"net/url"

	"lair-scanner/core/models"
)

// ScanUpdate is the body of a scan update.
type ScanUpdate struct {
	State      string `json:"state"`
	FilesCount int    `json:"filesCount"`
}

// CreateScan opens a scan record for a source.
func (c *Client) CreateScan(ctx context.Context, sourceID, scannerID string) (*models.Scan, error) {
	var scan models.Scan
	_, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/media/scans",
		body:      map[string]string{"sourceId": sourceID, "scannerId": scannerID},
		expected:  http.StatusCreated,
		operation: "create media scan",
		out:       &scan,
	})
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// AddScanChanges appends a batch of changes to a scan.
func (c *Client) AddScanChanges(ctx context.Context, scanID string, changes []models.Payload) error {
	_, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/media/scans/" + url.PathEscape(scanID) + "/changes",
		body:      changes,
		expected:  http.StatusCreated,
		operation: "add changes to media scan " + scanID,
	})
	return err
}

// UpdateScan sets the state and file count of a scan.
func (c *Client) UpdateScan(ctx context.Context, scanID string, update ScanUpdate) (*models.Scan, error) {
	var scan models.Scan
	_, err := c.do(ctx, request{
		method:    http.MethodPatch,
		path:      "/media/scans/" + url.PathEscape(scanID),
		body:      update,
		expected:  http.StatusOK,
		operation: "update media scan " + scanID,
		out:       &scan,
	})
	if err != nil {
		return nil, err
	}
	return &scan, nil
}
