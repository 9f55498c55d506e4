package models

import (
	"strings"
	"time"
)

// Source is a named media root registered on the Lair server.
type Source struct {
	// ID is the remote identifier of the source.
	ID string `json:"id"`

	// Name is the unique (per user) name of the source.
	Name string `json:"name"`

	// LocalPath is the root directory of the source on this machine.
	// It is not part of the remote resource; it is resolved from the scanner's properties.
	LocalPath string `json:"-"`

	// ScanPaths are the independently traversed sub-trees of the source.
	ScanPaths []ScanPath `json:"scanPaths,omitempty"`

	// Properties holds source-level settings.
	Properties SourceProperties `json:"properties"`
}

// SourceProperties holds the source-level settings stored on the server.
type SourceProperties struct {
	// Ignores are glob patterns matched against source-relative paths.
	Ignores []string `json:"ignores,omitempty"`
}

// ScanPath is a source-relative directory with a media category.
type ScanPath struct {
	ID       string `json:"id,omitempty"`
	Path     string `json:"path"`
	Category string `json:"category"`
}

// File is a file record observed either locally or remotely.
// Path is source-rooted and always starts with a slash.
type File struct {
	Path           string         `json:"path"`
	Size           int64          `json:"size"`
	FileCreatedAt  time.Time      `json:"fileCreatedAt"`
	FileModifiedAt time.Time      `json:"fileModifiedAt"`
	Properties     map[string]any `json:"properties"`
}

// Normalize truncates timestamps to whole seconds in UTC and makes sure
// properties are never nil.
func (f *File) Normalize() {
	f.FileCreatedAt = TruncateTime(f.FileCreatedAt)
	f.FileModifiedAt = TruncateTime(f.FileModifiedAt)
	if f.Properties == nil {
		f.Properties = map[string]any{}
	}
}

// TruncateTime drops sub-second precision.
func TruncateTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Second)
}

// SourcePath joins a scan path and a relative file path into a
// slash-prefixed source path.
func SourcePath(parts ...string) string {
	joined := strings.Join(parts, "/")
	for strings.Contains(joined, "//") {
		joined = strings.ReplaceAll(joined, "//", "/")
	}
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	if len(joined) > 1 {
		joined = strings.TrimSuffix(joined, "/")
	}
	return joined
}

// ChangeKind classifies the difference between the local and remote record of a path.
type ChangeKind string

const (
	// ChangeAdded is a file that only exists locally.
	ChangeAdded ChangeKind = "added"
	// ChangeModified is a file whose size, modification time or properties differ.
	ChangeModified ChangeKind = "modified"
	// ChangeDeleted is a file that only exists remotely.
	ChangeDeleted ChangeKind = "deleted"
	// ChangeIdentical is a file that is the same on both sides.
	ChangeIdentical ChangeKind = "identical"
)

// Attributes compared between the local and remote record of a file.
const (
	AttrSize       = "size"
	AttrModifiedAt = "fileModifiedAt"
	AttrProperties = "properties"
)

// Change is the classification of one path within a scan.
type Change struct {
	// Path is the source-relative path of the file.
	Path string `json:"path"`

	// Kind is the change classification.
	Kind ChangeKind `json:"type"`

	// Previous maps each changed attribute to its remote value.
	// Only set for modified files.
	Previous map[string]any `json:"previous,omitempty"`

	// File is the local record. Nil for deletions.
	File *File `json:"file,omitempty"`
}

// Payload is the representation of a change uploaded to the server.
type Payload struct {
	Path           string         `json:"path"`
	Type           ChangeKind     `json:"type"`
	Size           *int64         `json:"size,omitempty"`
	FileCreatedAt  string         `json:"fileCreatedAt,omitempty"`
	FileModifiedAt string         `json:"fileModifiedAt,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
}

// Payload converts the change into its upload representation.
// Deletions only carry the path and kind.
func (c Change) Payload() Payload {
	p := Payload{Path: c.Path, Type: c.Kind}
	if c.Kind == ChangeDeleted || c.File == nil {
		return p
	}

	size := c.File.Size
	p.Size = &size
	p.FileCreatedAt = formatTime(c.File.FileCreatedAt)
	p.FileModifiedAt = formatTime(c.File.FileModifiedAt)
	p.Properties = c.File.Properties
	if p.Properties == nil {
		p.Properties = map[string]any{}
	}
	return p
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Scan is the remote record of a single reconciliation run.
type Scan struct {
	ID         string `json:"id"`
	SourceID   string `json:"sourceId"`
	ScannerID  string `json:"scannerId"`
	State      string `json:"state,omitempty"`
	FilesCount int    `json:"filesCount,omitempty"`
}

// ScanStateScanned is the terminal state of a completed scan.
const ScanStateScanned = "scanned"

// Scanner is the remote identity of this client.
type Scanner struct {
	ID         string            `json:"id"`
	Properties ScannerProperties `json:"properties"`
}

// ScannerProperties holds the client-specific settings stored on the server.
type ScannerProperties struct {
	// SourcePaths maps source IDs to local root directories.
	SourcePaths map[string]string `json:"sourcePaths,omitempty"`
}

// Settings are the global media settings of the user.
type Settings struct {
	Ignores []string `json:"ignores"`
}
