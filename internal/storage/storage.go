// Package storage abstracts attachment object storage. Production runs
// against an S3-compatible service with presigned URLs; local filesystem
// storage backs development and tests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage errors
var (
	ErrObjectNotFound      = errors.New("object not found")
	ErrFileTooLarge        = errors.New("file exceeds size limit")
	ErrUnsupportedType     = errors.New("unsupported content type")
	ErrPresignUnsupported  = errors.New("presigned URLs not supported by this storage backend")
	ErrPathTraversal      = errors.New("path traversal detected")
)

// MaxFileSize is the maximum allowed attachment size (25 MiB)
const MaxFileSize = 25 * 1024 * 1024

// AllowedContentTypes is the exact server-side allow-list for attachments
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/heic":      true,
	"image/heif":      true,
}

// ObjectStorage is the storage collaborator: time-limited upload and
// download handles for a key, plus direct byte access for the
// extraction pipeline and local deployments.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ValidateUpload checks an upload request against the content-type
// allow-list and the size limit.
func ValidateUpload(contentType string, size int64) error {
	if !AllowedContentTypes[NormalizeContentType(contentType)] {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// NormalizeContentType lowercases and strips parameters ("; charset=...")
func NormalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// NewKey generates a unique storage key for a filename, sharded by the
// first two characters of the id for better distribution.
func NewKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	id := uuid.New().String()
	return fmt.Sprintf("%s/%s%s", id[:2], id, ext)
}
