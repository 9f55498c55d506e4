package reconcile

import (
	"sync/atomic"

	"lair-scanner/core/models"
)

// Progress combines the advancement of both producers into one fraction:
//
//	(remote files downloaded + first-level local entries scanned) /
//	(expected remote total + first-level local entries discovered)
type Progress struct {
	total      atomic.Int64
	downloaded atomic.Int64
	discovered atomic.Int64
	scanned    atomic.Int64
}

// Observe updates the counters from a producer event.
func (p *Progress) Observe(ev models.Event) {
	switch ev.Type {
	case models.EventTotal:
		p.total.Store(int64(ev.Total))
	case models.EventFileDownloaded:
		p.downloaded.Add(1)
	case models.EventDirectoryListed:
		if ev.Depth == 0 {
			p.discovered.Add(int64(ev.Entries))
		}
	case models.EventFileScanned, models.EventDirectoryScanned, models.EventEntrySkipped:
		if ev.Depth == 1 {
			p.scanned.Add(1)
		}
	}
}

// Fraction returns the completion ratio in [0, 1].
func (p *Progress) Fraction() float64 {
	den := p.total.Load() + p.discovered.Load()
	if den <= 0 {
		return 0
	}
	f := float64(p.downloaded.Load()+p.scanned.Load()) / float64(den)
	if f > 1 {
		return 1
	}
	return f
}
