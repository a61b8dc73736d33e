package core

import "context"

// BlobStore is content-addressable storage for photo bytes. Put returns a
// durable retrieval URL for the stored object.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}
