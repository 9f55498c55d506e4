package reconcile

import (
	"testing"

	"lair-scanner/core/models"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	var p Progress
	assert.Zero(t, p.Fraction())

	p.Observe(models.Event{Type: models.EventTotal, Total: 4})
	p.Observe(models.Event{Type: models.EventDirectoryListed, Depth: 0, Entries: 4})
	p.Observe(models.Event{Type: models.EventDirectoryListed, Depth: 1, Entries: 10})
	assert.Zero(t, p.Fraction())

	p.Observe(models.Event{Type: models.EventFileDownloaded})
	p.Observe(models.Event{Type: models.EventFileDownloaded})
	assert.InDelta(t, 0.25, p.Fraction(), 1e-9)

	p.Observe(models.Event{Type: models.EventFileScanned, Depth: 1})
	p.Observe(models.Event{Type: models.EventDirectoryScanned, Depth: 1})
	p.Observe(models.Event{Type: models.EventFileScanned, Depth: 2})
	assert.InDelta(t, 0.5, p.Fraction(), 1e-9)

	p.Observe(models.Event{Type: models.EventEntrySkipped, Depth: 1})
	p.Observe(models.Event{Type: models.EventFileScanned, Depth: 1})
	p.Observe(models.Event{Type: models.EventFileDownloaded})
	p.Observe(models.Event{Type: models.EventFileDownloaded})
	assert.InDelta(t, 1.0, p.Fraction(), 1e-9)

	p.Observe(models.Event{Type: models.EventFileDownloaded})
	assert.Equal(t, 1.0, p.Fraction())
}
