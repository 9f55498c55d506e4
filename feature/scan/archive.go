package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"lair-scanner/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// archivePrefix is the root of all archived reports in the bucket.
const archivePrefix = "scans/"

// Archive stores scan reports in object storage.
type Archive struct {
	client storage.Client
	bucket string
	region string
	logger *zap.Logger

	mu    sync.Mutex
	ready bool
}

// NewArchive creates an archive writing to the configured bucket.
func NewArchive(client storage.Client, cfg storage.Config, logger *zap.Logger) *Archive {
	return &Archive{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
	}
}

// ArchivedReport describes a stored report.
type ArchivedReport struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Save uploads the report and returns its object key.
func (a *Archive) Save(ctx context.Context, report *Report) (string, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := objectKey(report)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive report %s: %w", key, err)
	}

	a.logger.Debug("Archived scan report", zap.String("bucket", a.bucket), zap.String("key", key), zap.Int("size", len(body)))
	return key, nil
}

// List returns the archived reports of a source, oldest first.
func (a *Archive) List(ctx context.Context, source string) ([]ArchivedReport, error) {
	var reports []ArchivedReport
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    sourcePrefix(source),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports of %s: %w", source, obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		reports = append(reports, ArchivedReport{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return reports, nil
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ready {
		return nil
	}
	if err := storage.EnsureBucket(ctx, a.client, a.bucket, a.region); err != nil {
		return err
	}
	a.ready = true
	return nil
}

func sourcePrefix(source string) string {
	return archivePrefix + strings.ReplaceAll(source, "/", "_") + "/"
}

// objectKey names a report after its source, completion time and scan.
// Dry runs have no scan ID and get a random one.
func objectKey(report *Report) string {
	id := report.Summary.ScanID
	if id == "" {
		id = uuid.NewString()
	}
	name := fmt.Sprintf("%s-%s.json", report.FinishedAt.UTC().Format("20060102T150405Z"), id)
	return path.Join(sourcePrefix(report.SourceName), name)
}
