// ABOUTME: SQLite implementation of the token Store using modernc.org/sqlite
// ABOUTME: Single tokens table with automatic schema creation and WAL mode

package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a SQLite database. Useful when the token
// area must be shared through a single file with concurrent writers instead
// of a directory tree.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a SQLite token store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tokenstore")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite token store initialized", "path", path)
	return s, nil
}

// createSchema creates the tokens table if it doesn't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tokens (
			token  TEXT PRIMARY KEY,
			start  INTEGER NOT NULL,
			expire INTEGER NOT NULL,
			name   TEXT NOT NULL,
			eauth  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tokens_expire ON tokens(expire);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Put inserts or replaces the record keyed by its token id.
func (s *SQLiteStore) Put(ctx context.Context, rec Record) error {
	if !ValidID(rec.Token) {
		return fmt.Errorf("%w: %q", ErrBadTokenID, rec.Token)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tokens (token, start, expire, name, eauth) VALUES (?, ?, ?, ?, ?)`,
		rec.Token, rec.Start, rec.Expire, rec.Name, rec.Eauth,
	)
	if err != nil {
		return fmt.Errorf("inserting token record: %w", err)
	}
	return nil
}

// Get returns the record for id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	if !ValidID(id) {
		return Record{}, fmt.Errorf("%w: %q", ErrBadTokenID, id)
	}
	var rec Record
	err := s.db.QueryRowContext(ctx,
		`SELECT token, start, expire, name, eauth FROM tokens WHERE token = ?`, id,
	).Scan(&rec.Token, &rec.Start, &rec.Expire, &rec.Name, &rec.Eauth)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("querying token record: %w", err)
	}
	return rec, nil
}

// Delete removes the record for id. Absent records are not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrBadTokenID, id)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, id); err != nil {
		return fmt.Errorf("deleting token record: %w", err)
	}
	return nil
}

// Exists reports whether a record with id is persisted.
func (s *SQLiteStore) Exists(ctx context.Context, id string) (bool, error) {
	if !ValidID(id) {
		return false, fmt.Errorf("%w: %q", ErrBadTokenID, id)
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tokens WHERE token = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking token record: %w", err)
	}
	return true, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
