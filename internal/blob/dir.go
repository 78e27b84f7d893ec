package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirStore writes blobs as files under a base directory, one file per key.
// Keys may contain slashes; subdirectories are created as needed.
type DirStore struct {
	base string
}

// NewDirStore creates a DirStore rooted at base, creating the directory if
// it does not exist.
func NewDirStore(base string) (*DirStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &DirStore{base: base}, nil
}

// Put writes data to the file named by key under the base directory.
func (d *DirStore) Put(_ context.Context, key string, data []byte) error {
	path := filepath.Join(d.base, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating blob subdirectory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing blob %s: %w", key, err)
	}
	return nil
}

// Name returns the backend name.
func (d *DirStore) Name() string {
	return "dir"
}
