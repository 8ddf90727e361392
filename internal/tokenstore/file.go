// ABOUTME: File-per-token store implementation using CBOR-serialized records
// ABOUTME: One file per token id under a dedicated directory, 0600 permissions

package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// FileStore persists one CBOR-encoded record per token id in a directory.
// The storage medium is the only sharing mechanism: there is no cross-process
// lock, and uniqueness is enforced by the issuer's regenerate-on-collision
// loop rather than by the store.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates a file store rooted at dir, creating the directory
// (mode 0700) if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating token directory: %w", err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With("component", "tokenstore"),
	}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id)
}

// Put writes the record to <dir>/<token>.
func (s *FileStore) Put(_ context.Context, rec Record) error {
	if !ValidID(rec.Token) {
		return fmt.Errorf("%w: %q", ErrBadTokenID, rec.Token)
	}
	data, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding token record: %w", err)
	}
	if err := os.WriteFile(s.path(rec.Token), data, 0600); err != nil {
		return fmt.Errorf("writing token record: %w", err)
	}
	return nil
}

// Get reads and decodes the record for id. A record that exists on disk but
// does not decode is treated as not found; the manager purges it.
func (s *FileStore) Get(_ context.Context, id string) (Record, error) {
	if !ValidID(id) {
		return Record{}, fmt.Errorf("%w: %q", ErrBadTokenID, id)
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("reading token record: %w", err)
	}
	var rec Record
	if err := cbor.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("undecodable token record", "token", id, "error", err)
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Delete removes the record file for id.
func (s *FileStore) Delete(_ context.Context, id string) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrBadTokenID, id)
	}
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token record: %w", err)
	}
	return nil
}

// Exists reports whether a record file for id is present.
func (s *FileStore) Exists(_ context.Context, id string) (bool, error) {
	if !ValidID(id) {
		return false, fmt.Errorf("%w: %q", ErrBadTokenID, id)
	}
	_, err := os.Stat(s.path(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking token record: %w", err)
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }
