package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a migrated SQLite store in t.TempDir() and registers cleanup.
func OpenTestSQLite(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := RunMigrations(conn, DriverSQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return conn
}
