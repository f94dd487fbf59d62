// Package testutil provides shared helpers for integration tests.
// The store helpers open a throwaway SQLite database under the test's temp
// directory, so integration tests run anywhere the unit tests do — no
// external database or environment variables required.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/jhartung/tripvault/internal/kv"
	"github.com/jhartung/tripvault/migrations"
)

// NewStore opens a fresh, fully migrated SQLite-backed bucket store in the
// test's temp directory. The store (and its file, via t.TempDir) is cleaned
// up automatically when the test and all its subtests finish.
func NewStore(t *testing.T) *kv.SQLiteStore {
	t.Helper()

	db := NewSQLDB(t)
	Migrate(t, db)
	return kv.NewSQLiteStore(db)
}

// NewSQLDB opens an unmigrated *sql.DB against a fresh SQLite file in the
// test's temp directory. Use this when the test drives goose itself.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tripvault.db")
	db, err := sql.Open("sqlite", path+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// Migrate applies all embedded migrations to db.
func Migrate(t *testing.T, db *sql.DB) {
	t.Helper()

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		t.Fatalf("testutil.Migrate: create goose provider: %v", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		t.Fatalf("testutil.Migrate: run migrations: %v", err)
	}
}
