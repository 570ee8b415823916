// Package blob implements the attachment store: an asynchronous key-value
// store for base64 image payloads, kept separate from the primary record
// store so large attachments never count against its byte quota. Backed by
// SQLite with a much larger effective capacity.
package blob

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lifelog-dev/lifelog/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// Store is a lazily-opened SQLite blob store. The connection is opened on
// first use and cached for the lifetime of the Store; per-key writes are
// last-write-wins.
type Store struct {
	path string
	log  *slog.Logger

	once    sync.Once
	db      *sql.DB
	openErr error
}

// New returns a Store over the SQLite database at path. The database is
// not opened until the first operation.
func New(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{path: path, log: log}
}

func (s *Store) conn() (*sql.DB, error) {
	s.once.Do(func() {
		db, err := sql.Open("sqlite", s.path)
		if err != nil {
			s.openErr = fmt.Errorf("opening blob store: %w", err)
			return
		}
		// SQLite allows one writer at a time; a pool with more than one
		// connection turns concurrent deletes into SQLITE_BUSY failures.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(schemaSQL); err != nil {
			db.Close()
			s.openErr = fmt.Errorf("initializing blob schema: %w", err)
			return
		}
		s.db = db
	})
	return s.db, s.openErr
}

// Save stores data under id, replacing any existing blob with that id.
func (s *Store) Save(ctx context.Context, id, data string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"INSERT OR REPLACE INTO blobs (blob_id, data, created_at) VALUES (?, ?, ?)",
		id, data, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving blob %s: %w", id, err)
	}
	return nil
}

// Get returns the blob stored under id, or types.ErrBlobNotFound.
func (s *Store) Get(ctx context.Context, id string) (string, error) {
	db, err := s.conn()
	if err != nil {
		return "", err
	}
	var data string
	err = db.QueryRowContext(ctx,
		"SELECT data FROM blobs WHERE blob_id = ?", id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("blob %s: %w", id, types.ErrBlobNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting blob %s: %w", id, err)
	}
	return data, nil
}

// Delete removes the blob under id. Deletion is best-effort: failures are
// logged and swallowed so a failed cleanup never blocks the surrounding
// record deletion or import.
func (s *Store) Delete(ctx context.Context, id string) {
	db, err := s.conn()
	if err != nil {
		s.log.Warn("blob delete skipped", "id", id, "error", err)
		return
	}
	if _, err := db.ExecContext(ctx,
		"DELETE FROM blobs WHERE blob_id = ?", id); err != nil {
		s.log.Warn("blob delete failed", "id", id, "error", err)
	}
}

// DeleteMany removes the given blobs concurrently, each best-effort.
func (s *Store) DeleteMany(ctx context.Context, ids []string) {
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			s.Delete(ctx, id)
		}(id)
	}
	wg.Wait()
}

// IDs lists every stored blob id.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT blob_id FROM blobs ORDER BY blob_id")
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning blob id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating blob ids: %w", err)
	}
	return ids, nil
}

// Close releases the cached connection if it was ever opened.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
