// Package storage is the boundary to the object store holding course media.
// Segment records only carry keys; every byte lives behind a Storage backend
// selected at startup (local disk, MinIO, S3/R2, or memory).
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"

	"courseplatform/internal/domain"
)

// ErrRangeNotSatisfiable is returned by GetStream when the requested byte
// range starts beyond the end of the object.
var ErrRangeNotSatisfiable = errors.New("requested range not satisfiable")

// Storage is implemented by every object-store backend.
//
// Delete must be idempotent: removing a missing key returns nil. Composite
// operations are not transactional; callers order steps themselves.
type Storage interface {
	// Upload stores r under key, overwriting any existing object. size may be
	// -1 when unknown.
	Upload(ctx context.Context, key string, r io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	// GetStream opens key for reading. An empty rangeHeader serves the whole
	// object; otherwise an HTTP "bytes=" range is honored when valid.
	GetStream(ctx context.Context, key, rangeHeader string) (*StreamResponse, error)
	// PresignedURL returns a time-bounded URL for direct reads.
	PresignedURL(ctx context.Context, key string) (string, error)
	// CombineChunks concatenates partKeys in order into finalKey and removes
	// the parts once the final object is stored.
	CombineChunks(ctx context.Context, finalKey string, partKeys []string) error
}

// StreamResponse is an open object read. Callers must close Body.
type StreamResponse struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
	// ContentRange is set only when a range was served, e.g. "bytes 0-99/1000".
	ContentRange string
	// Size is the full object size regardless of range.
	Size int64
}

// Partial reports whether the response covers a byte range.
func (r *StreamResponse) Partial() bool { return r.ContentRange != "" }

// consumedParts lists the part keys to remove after a combine. finalKey is
// skipped when it doubles as a part, since it now holds the combined object.
func consumedParts(finalKey string, partKeys []string) []string {
	out := make([]string, 0, len(partKeys))
	for _, key := range partKeys {
		if key != finalKey {
			out = append(out, key)
		}
	}
	return out
}

const defaultContentType = "application/octet-stream"

// mediaTypes covers course media that the platform mime table may lack.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".md":   "text/markdown; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
}

// ContentTypeFor guesses a MIME type from the key's extension.
func ContentTypeFor(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ct, ok := mediaTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return defaultContentType
}

func storageErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StorageError{Op: op, Key: key, Err: err}
}

func objectNotFound(key string) error {
	return domain.NewNotFound("object", key)
}

// readCloser pairs a limited reader with the underlying closer.
type readCloser struct {
	io.Reader
	io.Closer
}
