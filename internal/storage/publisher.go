// Package storage publishes run artifacts to an S3 compatible bucket.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
)

// Publisher hands produced files to durable storage.
type Publisher interface {
	Publish(ctx context.Context, paths []string) error
}

// NopPublisher keeps artifacts on local disk only.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, []string) error { return nil }

// ObjectStore is the subset of an S3 client the publisher needs.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	UploadFile(ctx context.Context, bucket, key, filePath, contentType string) error
}

// ObjectPublisher uploads artifacts under prefix/<run id>/<file name>.
type ObjectPublisher struct {
	store  ObjectStore
	bucket string
	prefix string
	runID  string
	logger *slog.Logger

	bucketReady bool
}

// NewObjectPublisher creates a publisher for one run.
func NewObjectPublisher(store ObjectStore, bucket, prefix, runID string, logger *slog.Logger) *ObjectPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectPublisher{
		store:  store,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		runID:  runID,
		logger: logger,
	}
}

// Publish uploads each file, creating the bucket on first use.
func (p *ObjectPublisher) Publish(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if !p.bucketReady {
		if err := p.store.EnsureBucket(ctx, p.bucket); err != nil {
			return fmt.Errorf("failed to prepare bucket %s: %w", p.bucket, err)
		}
		p.bucketReady = true
	}

	for _, filePath := range paths {
		key := ObjectKey(p.prefix, p.runID, filePath)
		if err := p.store.UploadFile(ctx, p.bucket, key, filePath, ContentType(filePath)); err != nil {
			return fmt.Errorf("failed to publish %s: %w", filePath, err)
		}
		p.logger.Info("artifact published", "bucket", p.bucket, "key", key)
	}
	return nil
}

// ObjectKey joins prefix, run id and the file's base name with slashes.
func ObjectKey(prefix, runID, filePath string) string {
	parts := make([]string, 0, 3)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}
	if runID != "" {
		parts = append(parts, runID)
	}
	parts = append(parts, filepath.Base(filePath))
	return path.Join(parts...)
}

// ContentType maps the artifact extensions the pipeline writes.
func ContentType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
