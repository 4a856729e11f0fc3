package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"churnprep/internal/domain"
)

var _ domain.ObjectStore = (*FileStore)(nil)

// FileStore writes objects under a local directory. It backs development
// profiles and tests where no bucket is reachable.
type FileStore struct {
	root string
}

// NewFileStore creates a directory-backed object store.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Put writes the object and returns its file:// URI.
func (s *FileStore) Put(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + abs, nil
}
