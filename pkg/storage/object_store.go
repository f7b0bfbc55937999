package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalObjectStore persists artifacts on disk under bucket directories.
// It stands in for a hosted object store; the location it returns is the
// "bucket/key" pair the record keeps.
type LocalObjectStore struct {
	baseDir string
}

// NewLocalObjectStore ensures the base directory exists and returns a handle.
func NewLocalObjectStore(baseDir string) (*LocalObjectStore, error) {
	if baseDir == "" {
		baseDir = "./data"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalObjectStore{baseDir: baseDir}, nil
}

// Put writes the object bytes under bucket/key and returns the location.
// The content type travels with the download handler; the local store
// keeps bytes only.
func (s *LocalObjectStore) Put(bucket, key string, data []byte, contentType string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key required")
	}
	path := s.resolve(bucket, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare bucket directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return bucket + "/" + key, nil
}

// Open returns a read-only handle for the stored object.
func (s *LocalObjectStore) Open(bucket, key string) (*os.File, error) {
	file, err := os.Open(s.resolve(bucket, key))
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return file, nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (s *LocalObjectStore) Delete(bucket, key string) error {
	if err := os.Remove(s.resolve(bucket, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Exists reports whether the object is present.
func (s *LocalObjectStore) Exists(bucket, key string) bool {
	_, err := os.Stat(s.resolve(bucket, key))
	return err == nil
}

func (s *LocalObjectStore) resolve(bucket, key string) string {
	// Keys are generated internally, but strip traversal anyway.
	clean := filepath.Clean(strings.TrimPrefix(key, "/"))
	return filepath.Join(s.baseDir, bucket, clean)
}
