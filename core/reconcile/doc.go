// Package reconcile classifies the differences between the local files of a
// media source and the remote catalog, and uploads them to the server.
//
// The reconciliation runs two producers concurrently: the local scanner stages
// files in the scanned partition of the staging store and the remote lister
// stages pages of the catalog in the downloaded partition. Both announce what
// they staged through channels consumed by a single loop in the engine.
//
// # Matching
//
// Every arrival triggers an asynchronous look-up of the same path on the other
// side. The look-up is a single transaction that removes the path from both
// partitions only when it exists in both, so whichever side arrives last
// performs the comparison and a path is never compared twice. In-flight
// look-ups are tracked in an errgroup that is awaited before the sweep.
//
// # Sweep
//
// Once both producers are exhausted and all look-ups have completed, anything
// left in scanned was never listed remotely (added) and anything left in
// downloaded was never found locally (deleted).
//
// # Classification
//
// Size, modification time (whole seconds) and properties are compared. A
// difference in any of them makes the file modified and records the remote
// value in the change's Previous map; otherwise it is identical. Identical
// files are only kept when listing or uploading them is requested.
//
// # Upload
//
// Changes are queued in the upload-queue partition. The Batcher flushes one
// batch asynchronously whenever a full batch is queued and no flush is in
// flight, and the engine drains whatever remains at the end. Queue entries are
// deleted only after the server accepted them. Dry runs skip the scan record
// and every upload.
//
// # Usage
//
//	engine := reconcile.NewEngine(store, client, scanner, lister, cfg, logger)
//	summary, err := engine.Run(ctx, source, reconcile.Options{ScannerID: id})
package reconcile
