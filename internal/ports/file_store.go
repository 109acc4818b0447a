package ports

import (
	"context"
	"errors"
	"io"
)

var ErrFileNotFound = errors.New("stored file not found")

// StoredFile describes a saved upload.
type StoredFile struct {
	Name string // generated collision-resistant filename
	Size int64
}

// FileStore is the module-private upload root. Files are addressed by
// generated name only and served through an authenticated proxy, never a
// static path.
type FileStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (StoredFile, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
}
