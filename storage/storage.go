package storage

import (
	"context"
	"io"
)

// Storage is an object store that artifacts are published to.
type Storage interface {
	// Upload writes reader to key, replacing any existing object.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download returns a reader for key. The caller closes it.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a location for the object at key.
	URL(ctx context.Context, key string) (string, error)
}
