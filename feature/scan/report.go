package scan

import (
	"time"

	"lair-scanner/core/models"
	"lair-scanner/core/reconcile"
)

// Report is the outcome of scanning one source.
type Report struct {
	SourceID   string            `json:"sourceId"`
	SourceName string            `json:"sourceName"`
	LocalPath  string            `json:"localPath"`
	DryRun     bool              `json:"dryRun"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Summary    reconcile.Summary `json:"summary"`

	// Changes are ordered by path. Only filled when listing or archiving.
	Changes []models.Change `json:"changes,omitempty"`

	// ArchiveKey is the object the report was archived to, if any.
	ArchiveKey string `json:"-"`
}

// Duration returns how long the scan took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
