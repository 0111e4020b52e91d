package testutil

import (
	"context"
	"testing"
	"time"

	minioclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// CreateBucket makes a bucket on a test MinIO instance. The store under
// test expects buckets to exist before it connects.
func CreateBucket(t *testing.T, endpoint, bucket string) {
	t.Helper()

	client, err := minioclient.New(endpoint, &minioclient.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Fatalf("Failed to create minio client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i := 0; i < 10; i++ {
		err = client.MakeBucket(ctx, bucket, minioclient.MakeBucketOptions{})
		if err == nil {
			return
		}
		exists, existsErr := client.BucketExists(ctx, bucket)
		if existsErr == nil && exists {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("Failed to create bucket %s: %v", bucket, err)
}
