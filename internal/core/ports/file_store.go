package ports

import (
	"context"
	"io"
)

// FileStore keeps uploaded files. Save returns the public path of the stored
// file (e.g. /uploads/avatars/avatar-1700000000000-123456789.png).
type FileStore interface {
	Save(ctx context.Context, kind, originalName string, content io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

// CleanupQueue schedules asynchronous removal of stored files.
type CleanupQueue interface {
	Enqueue(path string)
}
