// Package staging provides the scan-scoped staging store used to merge-join
// local and remote file observations.
//
// The store is a single ordered key-value table on an embedded SQLite database
// accessed through GORM. Four logical partitions share the table and are
// separated by a key prefix:
//
//	1:<path>  downloaded    remote records awaiting a local counterpart
//	2:<path>  scanned       local records awaiting a remote counterpart
//	3:<path>  changed       change records awaiting report
//	4:<path>  upload-queue  change records awaiting upload
//
// Keys compare byte-wise, so the range of a partition with tag t is
// [t + ":", t + ";"). Range reads and range deletes never cross that boundary.
//
// # Lifecycle
//
// A store is opened for one scan session and closed at its end. When no
// directory is configured the database lives in a temporary directory that is
// removed on Close. Nothing in the store is durable application state.
//
// # Concurrency
//
// The underlying pool holds a single connection, which serializes every
// statement and transaction. Stream never invokes its callback while a query
// is open, so callbacks may use the store.
package staging
