package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localStorage implements ObjectStorage on the local filesystem. Presigned
// URLs are not available; callers fall back to routing bytes through the
// server.
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a filesystem-backed ObjectStorage rooted at basePath
func NewLocalStorage(basePath string) (ObjectStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &localStorage{basePath: basePath}, nil
}

// PresignUpload is not supported for local storage
func (s *localStorage) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	return "", ErrPresignUnsupported
}

// PresignDownload is not supported for local storage
func (s *localStorage) PresignDownload(ctx context.Context, key string) (string, error) {
	return "", ErrPresignUnsupported
}

// validatePath ensures key resolves inside basePath (prevents traversal)
func (s *localStorage) validatePath(key string) (string, error) {
	cleanPath := filepath.Clean(filepath.FromSlash(key))

	if filepath.IsAbs(cleanPath) || strings.Contains(cleanPath, "..") {
		return "", ErrPathTraversal
	}

	fullPath := filepath.Join(s.basePath, cleanPath)

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("invalid object key: %w", err)
	}
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return "", ErrPathTraversal
	}

	return absPath, nil
}

// Put stores an object under key
func (s *localStorage) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	fullPath, err := s.validatePath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create subdirectory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Get retrieves an object by key
func (s *localStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.validatePath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes an object by key. A missing object is not an error.
func (s *localStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.validatePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
