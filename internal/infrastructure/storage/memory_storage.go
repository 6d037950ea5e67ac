package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"planmarket/internal/domain/service"
)

// MemoryStorage keeps objects in process. It backs the memory store driver
// and local development without a bucket.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
	types   map[string]string
}

var _ service.FileStorage = (*MemoryStorage)(nil)

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: baseURL,
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *MemoryStorage) Upload(ctx context.Context, file io.Reader, objectPath, contentType string, isPublic bool) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %v", err)
	}
	m.mu.Lock()
	m.objects[objectPath] = data
	m.types[objectPath] = contentType
	m.mu.Unlock()

	if isPublic {
		return m.baseURL + "/" + objectPath, nil
	}
	return objectPath, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	delete(m.objects, objectPath)
	delete(m.types, objectPath)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) SignedURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[objectPath]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("object %q not found", objectPath)
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("%s/%s?expires=%d", m.baseURL, url.PathEscape(objectPath), expires), nil
}

// Object returns a stored object's bytes and content type.
func (m *MemoryStorage) Object(objectPath string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[objectPath]
	return bytes.Clone(data), m.types[objectPath], ok
}

func (m *MemoryStorage) Close() error { return nil }
