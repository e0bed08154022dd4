package kb

import (
	"context"
	"time"

	"knowledgebase/internal/domain/models/kb"
)

// BlobStore holds markdown bodies and image assets addressed by key.
// There is no transaction spanning it and the relational store.
type BlobStore interface {
	// GetContent returns the object body. found is false when the key does not exist.
	GetContent(ctx context.Context, key string) (content string, found bool, err error)

	// UploadContent writes content under key, replacing any existing object
	UploadContent(ctx context.Context, key, content, mimeType string, metadata map[string]string) error

	// DeleteObject removes key. Deleting a missing key is not an error.
	DeleteObject(ctx context.Context, key string) error

	// GenerateUploadURL returns a short-lived target for a direct client upload
	GenerateUploadURL(ctx context.Context, key, mimeType string, sizeLimit int64) (*kb.UploadTarget, error)

	// GenerateDownloadURL returns a URL that can fetch key for ttl
	GenerateDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// List lists every object whose key starts with prefix
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}
