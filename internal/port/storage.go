package port

import (
	"context"
	"io"
	"time"
)

// UploadInput encapsulates the parameters needed to store an object.
type UploadInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage abstracts storage of uploaded document bytes. Keys are flat
// strings of the form "{document_id}_{filename}"; List resolves a document id
// back to its object via prefix match.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}
