package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when a key does not exist in the bucket.
var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified *time.Time
}

// Service stores uploaded images in remote object storage. Implementations
// are bound to a single bucket.
type Service interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectKey returns a fresh key of the form <prefix>/<folder>/<uuid><ext>.
func NewObjectKey(prefix, folder, ext string) string {
	name := uuid.NewString() + strings.ToLower(ext)
	return strings.TrimPrefix(path.Join(strings.Trim(prefix, "/"), strings.Trim(folder, "/"), name), "/")
}

// CleanKey normalizes a client supplied key and rejects traversal attempts.
func CleanKey(key string) (string, bool) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", false
	}
	cleaned := path.Clean(key)
	if cleaned != key || strings.HasPrefix(cleaned, "..") {
		return "", false
	}
	return cleaned, true
}
