// Package storagetest provides an in-memory storage.Service for tests.
package storagetest

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"blog-server/internal/storage"
)

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

// Memory keeps objects in a map. The zero value is not usable; call NewMemory.
type Memory struct {
	mu      sync.Mutex
	objects map[string]object
	// PutErr, when set, fails every Put.
	PutErr error
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]object)}
}

func (m *Memory) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{data: data, contentType: contentType, modified: time.Now()}
	return nil
}

func (m *Memory) Open(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	modified := obj.modified
	return io.NopCloser(bytes.NewReader(obj.data)), storage.ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: &modified,
	}, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Has reports whether key is stored.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var _ storage.Service = (*Memory)(nil)
