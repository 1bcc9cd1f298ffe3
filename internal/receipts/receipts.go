// Package receipts stores downloaded receipt images keyed by the record's
// correlation id.
package receipts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store writes receipt images into a flat directory.
type Store struct {
	dir string
}

// New creates the storage directory if needed and returns the store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipts dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the on-disk location for a correlation id.
func (s *Store) Path(correlationID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.png", correlationID))
}

// Save streams image content to the file for the correlation id.
// Any download or write failure is returned to the caller; nothing is
// persisted partially without an error.
func (s *Store) Save(correlationID int64, r io.Reader) (string, error) {
	path := s.Path(correlationID)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create receipt %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write receipt %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close receipt %s: %w", path, err)
	}
	return path, nil
}
