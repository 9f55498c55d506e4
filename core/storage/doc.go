// Package storage provides the object storage client used to archive scan reports.
//
// It wraps the MinIO Go client behind a narrow interface so that both AWS S3
// and self-hosted MinIO instances can hold the archive, and so that archive
// code can be tested against the mock in core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: EnsureBucket creates the archive bucket on first use.
//   - PutObject: uploads a report.
//   - ListObjects: lists archived reports under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
