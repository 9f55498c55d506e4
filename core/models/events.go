package models

// EventType identifies a scan lifecycle or progress event.
type EventType string

const (
	EventDirectoryListing EventType = "directory:listing"
	EventDirectoryListed  EventType = "directory:listed"
	EventDirectoryScanned EventType = "directory:scanned"
	EventFileScanning     EventType = "file:scanning"
	EventFileScanned      EventType = "file:scanned"
	EventEntrySkipped     EventType = "entry:skipped"
	EventFileDownloaded   EventType = "file:downloaded"
	EventBatchDownloaded  EventType = "batch:downloaded"
	EventTotal            EventType = "total"
)

// Event is a message emitted by a producer.
// Only the fields relevant to the event type are set.
type Event struct {
	Type EventType

	// Path is the source-relative path of the directory or file.
	Path string

	// Depth is the depth of the entry relative to its scan path (1 for direct children).
	Depth int

	// Entries is the number of eligible entries of a listed directory.
	Entries int

	// File is the observed record for file:scanned and file:downloaded.
	File *File

	// Files is the persisted batch for batch:downloaded.
	Files []File

	// Total is the expected number of remote files for total.
	Total int
}
