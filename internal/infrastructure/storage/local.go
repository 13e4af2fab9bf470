package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps generated documents in a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the download directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the document atomically: a partial write never becomes visible
// under the final name.
func (s *LocalStore) Save(ctx context.Context, name string, data []byte) error {
	tmp := filepath.Join(s.dir, name+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize document: %w", err)
	}
	return nil
}

// Open streams a stored document.
func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, name))
}

// Path returns the absolute location of a stored document, used by the CLI
// to report where the generated file landed.
func (s *LocalStore) Path(name string) string {
	abs, err := filepath.Abs(filepath.Join(s.dir, name))
	if err != nil {
		return filepath.Join(s.dir, name)
	}
	return abs
}
