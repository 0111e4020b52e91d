// Package storage archives generated CSV reports to S3-compatible
// object storage. Archival is optional; when no endpoint is configured
// the dashboard serves downloads only.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("toolbox-dashboard/storage")

// Config holds S3/MinIO connection settings.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// ReportStore archives report files.
type ReportStore struct {
	client *minio.Client
	bucket string
}

// NewReportStore creates a store and verifies the bucket exists. The
// bucket must be created out-of-band.
func NewReportStore(config Config) (*ReportStore, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, config.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist: create it before starting the server", config.BucketName)
	}

	return &ReportStore{client: client, bucket: config.BucketName}, nil
}

// Archive stores one generated report under a timestamped key and
// returns that key. Keys look like "reports/2025/01/users-20250102T150405Z.csv".
func (s *ReportStore) Archive(ctx context.Context, report string, content []byte) (string, error) {
	now := time.Now().UTC()
	key := fmt.Sprintf("reports/%04d/%02d/%s-%s.csv",
		now.Year(), now.Month(), report, now.Format("20060102T150405Z"))

	ctx, span := tracer.Start(ctx, "storage.archive_report",
		trace.WithAttributes(
			attribute.String("storage.key", key),
			attribute.Int("storage.size", len(content)),
		))
	defer span.End()

	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/csv; charset=utf-8"})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("failed to archive report: %w", err)
	}
	return key, nil
}

// List returns the archived report keys under the reports/ prefix,
// newest keys last (lexicographic object order).
func (s *ReportStore) List(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "storage.list_reports")
	defer span.End()

	var keys []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    "reports/",
		Recursive: true,
	}) {
		if object.Err != nil {
			span.RecordError(object.Err)
			span.SetStatus(codes.Error, object.Err.Error())
			return nil, fmt.Errorf("failed to list reports: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}
