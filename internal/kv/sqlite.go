package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no cgo
)

// SQLiteStore persists buckets as rows in a single `buckets` table of a local
// SQLite file. Writes to a bucket are serialized through a per-bucket mutex:
// SQLite handles file locking, but the read-modify-write cycle in Update
// must not interleave with another writer on the same bucket.
type SQLiteStore struct {
	db *sql.DB

	mu       sync.Mutex // guards bucketMu
	bucketMu map[string]*sync.Mutex
}

// Open opens (creating if necessary) the SQLite database at path and returns
// a store backed by it. The caller is responsible for running migrations
// before first use and for calling Close on shutdown.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("kv.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("kv.Open: ping: %w", err)
	}
	// A single connection sidesteps SQLITE_BUSY between the pooled
	// connections of one process.
	db.SetMaxOpenConns(1)
	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an already-open database. Used by tests that manage
// the connection (and migrations) themselves.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, bucketMu: make(map[string]*sync.Mutex)}
}

// DB exposes the underlying connection for migration runners.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// lock returns the mutex for a bucket, creating it on first use.
func (s *SQLiteStore) lock(bucket string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.bucketMu[bucket]
	if !ok {
		m = &sync.Mutex{}
		s.bucketMu[bucket] = m
	}
	return m
}

// Get returns the bucket's value, or nil when the bucket was never written.
func (s *SQLiteStore) Get(ctx context.Context, bucket string) ([]byte, error) {
	const q = `SELECT value FROM buckets WHERE key = ?`

	var value []byte
	err := s.db.QueryRowContext(ctx, q, bucket).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv.SQLiteStore.Get %q: %w", bucket, err)
	}
	return value, nil
}

// Put overwrites the bucket's value.
func (s *SQLiteStore) Put(ctx context.Context, bucket string, value []byte) error {
	m := s.lock(bucket)
	m.Lock()
	defer m.Unlock()
	return s.put(ctx, bucket, value)
}

func (s *SQLiteStore) put(ctx context.Context, bucket string, value []byte) error {
	const q = `
		INSERT INTO buckets (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	if _, err := s.db.ExecContext(ctx, q, bucket, value); err != nil {
		return fmt.Errorf("kv.SQLiteStore.Put %q: %w", bucket, err)
	}
	return nil
}

// Update runs the read-modify-write cycle under the bucket's mutex.
func (s *SQLiteStore) Update(ctx context.Context, bucket string, fn func(old []byte) ([]byte, error)) error {
	m := s.lock(bucket)
	m.Lock()
	defer m.Unlock()

	old, err := s.Get(ctx, bucket)
	if err != nil {
		return err
	}
	next, err := fn(old)
	if err != nil {
		return err
	}
	return s.put(ctx, bucket, next)
}

// Delete removes the bucket. Absent buckets are a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, bucket string) error {
	m := s.lock(bucket)
	m.Lock()
	defer m.Unlock()

	const q = `DELETE FROM buckets WHERE key = ?`
	if _, err := s.db.ExecContext(ctx, q, bucket); err != nil {
		return fmt.Errorf("kv.SQLiteStore.Delete %q: %w", bucket, err)
	}
	return nil
}

// compile-time check: SQLiteStore must satisfy Store.
var _ Store = (*SQLiteStore)(nil)
