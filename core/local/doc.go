// Package local walks the scan paths of a source on the local filesystem and
// stages every eligible file in the scanned partition of the staging store.
//
// Each scan path is traversed recursively up to a maximum depth. Entries
// matching the global or source-level ignore patterns are dropped from
// directory listings before anything else happens to them. Every staged file
// is announced with a file:scanned event; directory and progress events are
// emitted along the way for the reconciliation engine and any UI.
package local
