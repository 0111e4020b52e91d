// Package db implements the Postgres event store behind the dashboard.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("toolbox-dashboard/db")

// DB wraps the PostgreSQL connection pool.
type DB struct {
	conn *sql.DB
}

// Connect opens a pooled connection to PostgreSQL and verifies it.
func Connect(dsn string) (*DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// The dashboard is read-mostly with one fetch per refresh; a modest
	// pool is plenty.
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(20 * time.Minute)

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Exec executes a statement without returning rows (tests, seeding).
func (db *DB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.conn.ExecContext(ctx, query, args...)
}

// Conn returns the underlying *sql.DB. Used by testutil to run
// migrations in tests.
func (db *DB) Conn() *sql.DB {
	return db.conn
}
