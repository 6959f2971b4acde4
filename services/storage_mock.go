package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// MockFileStore is an in-memory FileStore for testing
type MockFileStore struct {
	files map[string][]byte
	types map[string]string
	mu    sync.RWMutex

	// SaveErr, when set, is returned by every Save call
	SaveErr error
}

// NewMockFileStore creates an empty mock store
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{
		files: make(map[string][]byte),
		types: make(map[string]string),
	}
}

// Save stores the content of r under key
func (m *MockFileStore) Save(ctx context.Context, key string, r io.Reader, contentType string) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if _, err := CleanKey(key); err != nil {
		return err
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	m.mu.Lock()
	m.files[key] = content
	m.types[key] = contentType
	m.mu.Unlock()
	return nil
}

// Open returns the stored content for key
func (m *MockFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	content, exists := m.files[key]
	m.mu.RUnlock()
	if !exists {
		return nil, ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// URL returns a fake presigned URL for a stored key
func (m *MockFileStore) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	if !m.FileExists(key) {
		return "", errors.New("file not found in mock store: " + key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Delete removes key
func (m *MockFileStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.files, key)
	delete(m.types, key)
	m.mu.Unlock()
	return nil
}

// Files returns a copy of every stored file (for testing assertions)
func (m *MockFileStore) Files() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		files[k] = v
	}
	return files
}

// ContentType returns the content type recorded for key
func (m *MockFileStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[key]
}

// FileExists checks if a file exists in mock storage
func (m *MockFileStore) FileExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[key]
	return exists
}

// Clear removes all files from mock storage
func (m *MockFileStore) Clear() {
	m.mu.Lock()
	m.files = make(map[string][]byte)
	m.types = make(map[string]string)
	m.mu.Unlock()
}
