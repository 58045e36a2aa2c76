package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"blog-server/internal/apperr"
	"blog-server/internal/domain"
	"blog-server/internal/storage"
)

// Image folders under the storage key prefix.
const (
	FolderPosts    = "posts"
	FolderProfiles = "profiles"
)

const (
	msgUnsupportedImage = "Only JPEG, PNG, GIF and WEBP images are allowed."
	msgFileTooLarge     = "File too large"
	sniffLen            = 3072
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageStore validates uploaded images and writes them to object storage.
type ImageStore struct {
	storage   storage.Service
	keyPrefix string
	maxBytes  int64
}

func NewImageStore(store storage.Service, keyPrefix string, maxBytes int64) *ImageStore {
	return &ImageStore{storage: store, keyPrefix: keyPrefix, maxBytes: maxBytes}
}

// MaxBytes is the largest upload accepted.
func (s *ImageStore) MaxBytes() int64 {
	return s.maxBytes
}

// Save checks size and content type, then stores the image under folder and
// returns its key. The type is sniffed from the bytes, not the client header.
func (s *ImageStore) Save(ctx context.Context, folder string, upload domain.Upload) (string, error) {
	if upload.Content == nil {
		return "", apperr.Validation("No file uploaded")
	}
	if upload.Size > s.maxBytes {
		return "", apperr.TooLarge(msgFileTooLarge)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperr.Internal(err, "read upload")
	}
	head = head[:n]
	if n == 0 {
		return "", apperr.Validation("No file uploaded")
	}

	detected := mimetype.Detect(head)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		return "", apperr.Validation(msgUnsupportedImage)
	}

	key := storage.NewObjectKey(s.keyPrefix, folder, detected.Extension())
	body := io.MultiReader(bytes.NewReader(head), upload.Content)
	size := upload.Size
	if size <= 0 {
		size = -1
	}
	if err := s.storage.Put(ctx, key, body, size, detected.String()); err != nil {
		return "", apperr.Internal(err, "store image")
	}
	return key, nil
}

// Remove deletes key. Empty keys are ignored.
func (s *ImageStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.storage.Delete(ctx, key)
}

// Open streams a stored image. Keys outside the image folders are reported
// as missing.
func (s *ImageStore) Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	if !s.holds(key) {
		return nil, storage.ObjectInfo{}, apperr.NotFound("File not found")
	}
	body, info, err := s.storage.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, apperr.NotFound("File not found")
		}
		return nil, storage.ObjectInfo{}, apperr.Internal(err, "open image")
	}
	return body, info, nil
}

func (s *ImageStore) holds(key string) bool {
	for _, folder := range []string{FolderPosts, FolderProfiles} {
		dir := path.Join(strings.Trim(s.keyPrefix, "/"), folder) + "/"
		if strings.HasPrefix(key, dir) && len(key) > len(dir) {
			return true
		}
	}
	return false
}
