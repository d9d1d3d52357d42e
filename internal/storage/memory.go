package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-process backend for tests and local development.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	ttl     time.Duration
	now     func() time.Time
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]memoryObject),
		ttl:     time.Hour,
		now:     time.Now,
	}
}

func (s *MemoryStorage) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	if key == "" {
		return storageErr("upload", key, errors.New("empty object key"))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storageErr("upload", key, err)
	}
	s.put(key, data)
	return nil
}

func (s *MemoryStorage) put(key string, data []byte) {
	ct := ContentTypeFor(key)
	if ct == defaultContentType && len(data) > 0 {
		ct = http.DetectContentType(data)
	}
	s.mu.Lock()
	s.objects[key] = memoryObject{data: data, contentType: ct}
	s.mu.Unlock()
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) GetStream(ctx context.Context, key, rangeHeader string) (*StreamResponse, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, objectNotFound(key)
	}

	size := int64(len(obj.data))
	rng, err := ParseRange(rangeHeader, size)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return &StreamResponse{
			Body:          io.NopCloser(bytes.NewReader(obj.data)),
			ContentLength: size,
			ContentType:   obj.contentType,
			Size:          size,
		}, nil
	}
	return &StreamResponse{
		Body:          io.NopCloser(bytes.NewReader(obj.data[rng.Start : rng.End+1])),
		ContentLength: rng.Length(),
		ContentType:   obj.contentType,
		ContentRange:  rng.ContentRange(size),
		Size:          size,
	}, nil
}

func (s *MemoryStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	if !s.Has(key) {
		return "", objectNotFound(key)
	}
	expires := s.now().Add(s.ttl).Unix()
	return fmt.Sprintf("memory://%s?expires=%d", url.PathEscape(key), expires), nil
}

func (s *MemoryStorage) CombineChunks(ctx context.Context, finalKey string, partKeys []string) error {
	if len(partKeys) == 0 {
		return storageErr("combine", finalKey, errors.New("no parts to combine"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	for _, key := range partKeys {
		obj, ok := s.objects[key]
		if !ok {
			return storageErr("combine", finalKey, objectNotFound(key))
		}
		buf.Write(obj.data)
	}
	for _, key := range partKeys {
		delete(s.objects, key)
	}

	data := buf.Bytes()
	ct := ContentTypeFor(finalKey)
	if ct == defaultContentType && len(data) > 0 {
		ct = http.DetectContentType(data)
	}
	s.objects[finalKey] = memoryObject{data: data, contentType: ct}
	return nil
}

// Has reports whether key is stored.
func (s *MemoryStorage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

// Keys returns all stored keys in sorted order.
func (s *MemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
