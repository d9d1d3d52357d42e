package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage keeps objects as files under a base directory. Presigned URLs
// point back at this service with a signed token (see VerifyToken).
type LocalStorage struct {
	baseDir    string
	publicBase string
	ttl        time.Duration
	signer     *URLSigner
}

func NewLocalStorage(baseDir, publicBaseURL, signingSecret string, ttl time.Duration) (*LocalStorage, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{
		baseDir:    abs,
		publicBase: strings.TrimRight(publicBaseURL, "/"),
		ttl:        ttl,
		signer:     NewURLSigner(signingSecret),
	}, nil
}

// resolve maps a key onto a path inside baseDir, rejecting keys that would
// escape it.
func (s *LocalStorage) resolve(key string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(key, "/"))
	if key == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.baseDir, rel), nil
}

func (s *LocalStorage) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	p, err := s.resolve(key)
	if err != nil {
		return storageErr("upload", key, err)
	}
	if err := ctx.Err(); err != nil {
		return storageErr("upload", key, err)
	}
	return storageErr("upload", key, writeAtomic(p, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	}))
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return storageErr("delete", key, err)
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storageErr("delete", key, err)
	}
	return nil
}

func (s *LocalStorage) GetStream(ctx context.Context, key, rangeHeader string) (*StreamResponse, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, storageErr("get", key, err)
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, objectNotFound(key)
		}
		return nil, storageErr("get", key, err)
	}

	resp, err := s.stream(f, key, rangeHeader)
	if err != nil {
		f.Close()
		return nil, err
	}
	return resp, nil
}

func (s *LocalStorage) stream(f *os.File, key, rangeHeader string) (*StreamResponse, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, storageErr("get", key, err)
	}
	size := info.Size()

	contentType, err := detectContentType(f, key)
	if err != nil {
		return nil, storageErr("get", key, err)
	}

	rng, err := ParseRange(rangeHeader, size)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return &StreamResponse{Body: f, ContentLength: size, ContentType: contentType, Size: size}, nil
	}

	if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
		return nil, storageErr("get", key, err)
	}
	return &StreamResponse{
		Body:          readCloser{Reader: io.LimitReader(f, rng.Length()), Closer: f},
		ContentLength: rng.Length(),
		ContentType:   contentType,
		ContentRange:  rng.ContentRange(size),
		Size:          size,
	}, nil
}

func (s *LocalStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	p, err := s.resolve(key)
	if err != nil {
		return "", storageErr("presign", key, err)
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", objectNotFound(key)
		}
		return "", storageErr("presign", key, err)
	}
	token, err := s.signer.Sign(key, s.ttl)
	if err != nil {
		return "", storageErr("presign", key, err)
	}
	escaped := (&url.URL{Path: strings.TrimPrefix(key, "/")}).EscapedPath()
	return fmt.Sprintf("%s/%s?token=%s", s.publicBase, escaped, url.QueryEscape(token)), nil
}

// VerifyToken checks a token previously issued by PresignedURL for key.
func (s *LocalStorage) VerifyToken(key, token string) error {
	return s.signer.Verify(key, token)
}

func (s *LocalStorage) CombineChunks(ctx context.Context, finalKey string, partKeys []string) error {
	if len(partKeys) == 0 {
		return storageErr("combine", finalKey, errors.New("no parts to combine"))
	}
	dst, err := s.resolve(finalKey)
	if err != nil {
		return storageErr("combine", finalKey, err)
	}

	parts := make([]string, 0, len(partKeys))
	for _, key := range partKeys {
		p, err := s.resolve(key)
		if err != nil {
			return storageErr("combine", finalKey, err)
		}
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return storageErr("combine", finalKey, objectNotFound(key))
			}
			return storageErr("combine", finalKey, err)
		}
		parts = append(parts, p)
	}

	err = writeAtomic(dst, func(w io.Writer) error {
		for _, p := range parts {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := appendFile(w, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("combine", finalKey, err)
	}

	for _, key := range consumedParts(finalKey, partKeys) {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func appendFile(w io.Writer, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// writeAtomic writes into a temp file next to p and renames it into place,
// so readers never observe a partially written object.
func writeAtomic(p string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func detectContentType(f *os.File, key string) (string, error) {
	if ct := ContentTypeFor(key); ct != defaultContentType {
		return ct, nil
	}
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if n == 0 {
		return defaultContentType, nil
	}
	return http.DetectContentType(buf[:n]), nil
}
