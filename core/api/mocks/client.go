package mocks

import (
	"context"

	"lair-scanner/core/api"
	"lair-scanner/core/models"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of the api interfaces
type Client struct {
	mock.Mock
}

func (m *Client) CountFiles(ctx context.Context, q api.FileQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}

func (m *Client) ListFiles(ctx context.Context, q api.FileQuery, start, number int) ([]models.File, api.Pagination, error) {
	args := m.Called(ctx, q, start, number)
	files, _ := args.Get(0).([]models.File)
	return files, args.Get(1).(api.Pagination), args.Error(2)
}

func (m *Client) CreateScan(ctx context.Context, sourceID, scannerID string) (*models.Scan, error) {
	args := m.Called(ctx, sourceID, scannerID)
	if scan, ok := args.Get(0).(*models.Scan); ok {
		return scan, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) AddScanChanges(ctx context.Context, scanID string, changes []models.Payload) error {
	args := m.Called(ctx, scanID, changes)
	return args.Error(0)
}

func (m *Client) UpdateScan(ctx context.Context, scanID string, update api.ScanUpdate) (*models.Scan, error) {
	args := m.Called(ctx, scanID, update)
	if scan, ok := args.Get(0).(*models.Scan); ok {
		return scan, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetSettings(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if settings, ok := args.Get(0).(*models.Settings); ok {
		return settings, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpdateSettings(ctx context.Context, settings models.Settings) (*models.Settings, error) {
	args := m.Called(ctx, settings)
	if updated, ok := args.Get(0).(*models.Settings); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

var (
	_ api.FileCatalog   = (*Client)(nil)
	_ api.ScanRecorder  = (*Client)(nil)
	_ api.SettingsStore = (*Client)(nil)
)
