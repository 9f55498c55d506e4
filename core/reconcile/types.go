package reconcile

import (
	"context"
	"errors"

	"lair-scanner/core/models"
)

// ErrDuplicateClassification signals that a path was classified twice in one scan.
// It indicates a producer bug and aborts the scan.
var ErrDuplicateClassification = errors.New("path classified twice")

// Config holds the tunables of a scan.
type Config struct {
	// MaxDepth limits the recursion of the local scanner.
	MaxDepth int `mapstructure:"max_depth" default:"10"`
	// PageSize is the number of remote files requested per page.
	PageSize int `mapstructure:"page_size" default:"500"`
	// UploadBatchSize is the number of changes uploaded per request.
	UploadBatchSize int `mapstructure:"upload_batch_size" default:"100"`
	// Ignores are global patterns applied in addition to the server settings.
	Ignores []string `mapstructure:"ignores" default:"**/.DS_Store,**/@eaDir"`
	// YAMLFields restricts the keys extracted from YAML metadata files. Empty keeps all.
	YAMLFields []string `mapstructure:"yaml_fields" default:""`
}

// LocalProducer stages local files and reports them as events.
type LocalProducer interface {
	Scan(ctx context.Context, events chan<- models.Event) (int, error)
}

// RemoteProducer stages remote files and reports them as events.
type RemoteProducer interface {
	Download(ctx context.Context, events chan<- models.Event) error
}

// Observer receives every producer event with the current progress fraction.
// It is called from a single goroutine and must not block.
type Observer func(ev models.Event, progress float64)

// Options controls a single run.
type Options struct {
	// DryRun classifies without creating a scan record or uploading changes.
	DryRun bool

	// ListIdentical keeps identical files in the changed partition.
	ListIdentical bool

	// UploadIdentical also uploads identical files.
	UploadIdentical bool

	// ScannerID identifies this client in the scan record.
	ScannerID string

	// Observer is notified of events. Optional.
	Observer Observer
}

// Summary provides aggregate counts of a run.
type Summary struct {
	// ScanID is the remote scan record, empty for dry runs.
	ScanID string `json:"scan_id,omitempty"`

	// Files is the number of local files scanned.
	Files int `json:"files"`

	Added     int `json:"added"`
	Modified  int `json:"modified"`
	Deleted   int `json:"deleted"`
	Identical int `json:"identical"`

	// Uploaded is the number of changes accepted by the server.
	Uploaded int `json:"uploaded"`
}

// Changes returns the number of non-identical classifications.
func (s Summary) Changes() int {
	return s.Added + s.Modified + s.Deleted
}

func (s *Summary) count(kind models.ChangeKind) {
	switch kind {
	case models.ChangeAdded:
		s.Added++
	case models.ChangeModified:
		s.Modified++
	case models.ChangeDeleted:
		s.Deleted++
	case models.ChangeIdentical:
		s.Identical++
	}
}
