package api

import (
	"context"

	"lair-scanner/core/models"
)

// FileCatalog lists the remote files of a source.
type FileCatalog interface {
	// CountFiles returns the number of remote files matching the query.
	CountFiles(ctx context.Context, q FileQuery) (int, error)
	// ListFiles returns one page of remote files matching the query.
	ListFiles(ctx context.Context, q FileQuery, start, number int) ([]models.File, Pagination, error)
}

// ScanRecorder records scans and their change batches.
type ScanRecorder interface {
	// CreateScan opens a scan record for a source.
	CreateScan(ctx context.Context, sourceID, scannerID string) (*models.Scan, error)
	// AddScanChanges appends a batch of changes to a scan.
	AddScanChanges(ctx context.Context, scanID string, changes []models.Payload) error
	// UpdateScan sets the state and file count of a scan.
	UpdateScan(ctx context.Context, scanID string, update ScanUpdate) (*models.Scan, error)
}

// SourceCatalog manages media sources and their scan paths.
type SourceCatalog interface {
	FindSource(ctx context.Context, name string) (*models.Source, error)
	FindSources(ctx context.Context, names ...string) ([]models.Source, error)
	CreateSource(ctx context.Context, name string) (*models.Source, error)
	UpdateSource(ctx context.Context, id string, props models.SourceProperties) (*models.Source, error)
	CreateScanPath(ctx context.Context, sourceID string, scanPath models.ScanPath) (*models.ScanPath, error)
	DeleteScanPath(ctx context.Context, sourceID, scanPathID string) error
}

// ScannerRegistry manages the identity of this client.
type ScannerRegistry interface {
	CreateScanner(ctx context.Context) (*models.Scanner, error)
	RetrieveScanner(ctx context.Context, id string) (*models.Scanner, error)
	UpdateScanner(ctx context.Context, id string, props models.ScannerProperties) (*models.Scanner, error)
}

// SettingsStore reads and writes the global media settings.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, settings models.Settings) (*models.Settings, error)
}

var (
	_ FileCatalog     = (*Client)(nil)
	_ ScanRecorder    = (*Client)(nil)
	_ SourceCatalog   = (*Client)(nil)
	_ ScannerRegistry = (*Client)(nil)
	_ SettingsStore   = (*Client)(nil)
)
