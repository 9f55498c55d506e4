// Package sources manages the media sources of the current user as seen
// from this machine.
//
// A source is registered on the Lair server, but its location on disk is
// specific to each scanner: the scanner resource stores a map of source IDs to
// local directories. The Service joins both so that callers always receive
// sources with their LocalPath resolved.
//
// # Operations
//
//   - Scanner: loads the scanner identity, registering a new one when none is configured.
//   - Resolve: finds sources by name (or all of them) and attaches their local path.
//   - Status: reports each source with its scan paths and remote file count.
//   - Add / Locate: create a source or change where it lives locally.
//   - AddScanPath / RemoveScanPath: manage the traversed sub-trees of a source.
package sources
