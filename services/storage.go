package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/nageshcare/nageshcare-api/logging"
)

// ErrBlobNotFound is returned when a key has no stored object
var ErrBlobNotFound = errors.New("blob not found")

// FileStore stores uploaded files (logos, reply attachments, catalog media)
// under slash-separated keys
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// LocalFileStore keeps files in a directory on disk
type LocalFileStore struct {
	root      string
	urlPrefix string
}

// NewLocalFileStore returns a store rooted at dir, served under urlPrefix
func NewLocalFileStore(dir, urlPrefix string) *LocalFileStore {
	return &LocalFileStore{root: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Root returns the directory files are written to
func (s *LocalFileStore) Root() string {
	return s.root
}

// CleanKey normalises key and rejects values that escape the store root
func CleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return cleaned, nil
}

func (s *LocalFileStore) fullPath(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// Save writes r to key, creating parent directories
func (s *LocalFileStore) Save(ctx context.Context, key string, r io.Reader, contentType string) (err error) {
	full, err := s.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// Open returns a reader for key, or ErrBlobNotFound
func (s *LocalFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// URL returns the public path the upload handler serves key from
func (s *LocalFileStore) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	segments := strings.Split(cleaned, "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}
	return s.urlPrefix + "/" + strings.Join(segments, "/"), nil
}

// Delete removes key; a missing file is not an error
func (s *LocalFileStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	full, err := s.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// deleteBlobs removes keys best-effort, logging failures
func deleteBlobs(ctx context.Context, store FileStore, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			logging.LogKV("warn", "failed to delete stored file", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
}
