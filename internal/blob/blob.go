// Package blob defines the key-addressable remote object store consumed by
// the asset pipeline, with a Google Cloud Storage implementation and an
// in-memory implementation for tests and dry runs.
package blob

import "context"

// Object is one stored blob: its key path and the content hash recorded at
// upload time.
type Object struct {
	Key  string
	Hash string
}

// ProgressFunc receives byte-level transfer progress during an upload.
type ProgressFunc func(written, total int64)

// Store is a content-addressable object store. Keys are forward-slash paths;
// the hash recorded by Put is the deduplication identity of the object.
type Store interface {
	// Stat reports the stored hash for key, or ok=false when absent.
	Stat(ctx context.Context, key string) (hash string, ok bool, err error)
	// Put uploads the file at localPath under key, recording hash as the
	// object's content hash. Overwrites any existing object at key.
	Put(ctx context.Context, key, localPath, hash string, progress ProgressFunc) (string, error)
	// List returns every object under prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
}
