// Package blob defines the interface for external content storage backends.
// HTML bodies and attachment bytes are not stored inline in the database;
// they are handed to a blob store under the keys the persister generates.
package blob

import "context"

// Store is the interface that content storage backends must implement.
type Store interface {
	// Put stores data under key. It returns an error if the write fails.
	Put(ctx context.Context, key string, data []byte) error

	// Name returns the human-readable name of this backend.
	Name() string
}
