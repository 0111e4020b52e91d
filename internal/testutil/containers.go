// Package testutil provides shared infrastructure for integration
// tests: throwaway PostgreSQL and MinIO containers plus request/response
// helpers.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/db"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/storage"
)

// TestEnvironment holds test infrastructure (PostgreSQL + optional MinIO)
type TestEnvironment struct {
	DB                *db.DB
	PostgresContainer *postgres.PostgresContainer
	Ctx               context.Context
}

// SetupTestEnvironment starts a PostgreSQL container, connects, and runs
// migrations. Call once per test; cleanup is registered automatically.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	ctx := context.Background()

	t.Log("Starting PostgreSQL container...")
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("toolbox_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get postgres connection string: %v", err)
	}

	database, err := db.Connect(connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Log("Running database migrations...")
	if err := RunMigrations(database.Conn()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	env := &TestEnvironment{
		DB:                database,
		PostgresContainer: postgresContainer,
		Ctx:               ctx,
	}

	t.Cleanup(func() {
		env.Cleanup(t)
	})

	return env
}

// Cleanup stops containers and closes connections
func (e *TestEnvironment) Cleanup(t *testing.T) {
	t.Helper()

	if e.DB != nil {
		if err := e.DB.Close(); err != nil {
			t.Logf("Warning: failed to close database: %v", err)
		}
	}
	if e.PostgresContainer != nil {
		if err := e.PostgresContainer.Terminate(e.Ctx); err != nil {
			t.Logf("Warning: failed to terminate postgres container: %v", err)
		}
	}
}

// CleanDB truncates the events table for test isolation.
func (e *TestEnvironment) CleanDB(t *testing.T) {
	t.Helper()
	if _, err := e.DB.Exec(context.Background(), "TRUNCATE TABLE events"); err != nil {
		t.Fatalf("Failed to truncate events: %v", err)
	}
}

// SetupReportStore starts a MinIO container with a pre-created bucket
// and returns a store pointed at it.
func SetupReportStore(t *testing.T) *storage.ReportStore {
	t.Helper()
	ctx := context.Background()

	t.Log("Starting MinIO container...")
	minioContainer, err := minio.Run(ctx,
		"minio/minio:latest",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	if err != nil {
		t.Fatalf("Failed to start minio container: %v", err)
	}
	t.Cleanup(func() {
		if err := minioContainer.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate minio container: %v", err)
		}
	})

	endpoint, err := minioContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get minio endpoint: %v", err)
	}

	CreateBucket(t, endpoint, "toolbox-test")

	// MinIO needs a moment after startup; retry the bucket check.
	var store *storage.ReportStore
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		store, err = storage.NewReportStore(storage.Config{
			Endpoint:        endpoint,
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			BucketName:      "toolbox-test",
			UseSSL:          false,
		})
		if err == nil {
			break
		}
		if i == maxRetries-1 {
			t.Fatalf("Failed to create report store after %d retries: %v", maxRetries, err)
		}
		t.Logf("MinIO not ready yet, retrying... (%d/%d)", i+1, maxRetries)
		time.Sleep(500 * time.Millisecond)
	}
	return store
}
