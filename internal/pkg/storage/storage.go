package storage

import (
	"context"
	"io"
)

// FileStorage stores opaque blobs under relative paths.
type FileStorage interface {
	// Write replaces the content at path
	Write(ctx context.Context, path string, content io.Reader) error

	// Read opens the content at path. Missing paths report ErrNotFound.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file; missing files are not an error
	Delete(ctx context.Context, path string) error

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}
