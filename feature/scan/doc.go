// Package scan runs the reconciliation of media sources end to end.
//
// For each source the Service merges the ignore patterns (configured
// defaults, the user's global settings and the source's own patterns), opens
// a fresh staging store, wires the local scanner and the remote lister into a
// reconciliation engine and runs it. The outcome of each source is returned
// as a Report holding the summary and, on request, the list of changes read
// back from the staging store.
//
// # Archive
//
// When object storage is enabled, every completed scan report is written as
// JSON to the archive bucket under scans/<source>/<timestamp>-<scan id>.json.
// Reports can later be listed per source.
package scan
