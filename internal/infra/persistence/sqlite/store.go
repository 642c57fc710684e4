// Package sqlite persists the in-memory session store to a single SQLite
// table as JSON blobs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"mendel/internal/infra/persistence/memory"
	"mendel/pkg/domain"
)

var _ domain.SessionStore = (*Store)(nil)

const defaultPath = "mendel.db"

// Store snapshots the full in-memory state after every successful
// transaction.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database at path and hydrates the
// in-memory state from any existing snapshot.
func NewStore(path string, opts ...memory.Option) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(opts...), db: db, path: path}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

const bucketSessions = "sessions"

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var snapshot memory.Snapshot
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if bucket != bucketSessions {
			continue
		}
		if err := json.Unmarshal(payload, &snapshot.Sessions); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if found {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist(ctx context.Context) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	data, err := json.Marshal(snapshot.Sessions)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucketSessions, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucketSessions, data); err != nil {
		return fmt.Errorf("upsert %s: %w", bucketSessions, err)
	}
	return tx.Commit()
}

// RunInTransaction applies fn in memory, then snapshots state to SQLite if
// it succeeded.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) ([]domain.Change, error) {
	changes, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return changes, err
	}
	if len(changes) == 0 {
		return changes, nil
	}
	if err := s.persist(ctx); err != nil {
		return changes, err
	}
	return changes, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
