package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOOptions struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	PresignTTL      time.Duration
}

// MinIOStorage stores objects in a MinIO (or any S3-compatible) bucket.
type MinIOStorage struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

// NewMinIOStorage connects to MinIO and creates the bucket when missing.
func NewMinIOStorage(ctx context.Context, opts MinIOOptions) (*MinIOStorage, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStorage{client: client, bucket: opts.Bucket, ttl: opts.PresignTTL}, nil
}

func (s *MinIOStorage) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: ContentTypeFor(key),
	})
	return storageErr("upload", key, err)
}

func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isMinIONotFound(err) {
		return storageErr("delete", key, err)
	}
	return nil
}

func (s *MinIOStorage) stat(ctx context.Context, op, key string) (minio.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinIONotFound(err) {
			return info, objectNotFound(key)
		}
		return info, storageErr(op, key, err)
	}
	return info, nil
}

func (s *MinIOStorage) GetStream(ctx context.Context, key, rangeHeader string) (*StreamResponse, error) {
	info, err := s.stat(ctx, "get", key)
	if err != nil {
		return nil, err
	}

	rng, err := ParseRange(rangeHeader, info.Size)
	if err != nil {
		return nil, err
	}

	opts := minio.GetObjectOptions{}
	if rng != nil {
		if err := opts.SetRange(rng.Start, rng.End); err != nil {
			return nil, storageErr("get", key, err)
		}
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, opts)
	if err != nil {
		return nil, storageErr("get", key, err)
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(key)
	}
	resp := &StreamResponse{
		Body:          obj,
		ContentLength: info.Size,
		ContentType:   contentType,
		Size:          info.Size,
	}
	if rng != nil {
		resp.ContentLength = rng.Length()
		resp.ContentRange = rng.ContentRange(info.Size)
	}
	return resp, nil
}

func (s *MinIOStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	if _, err := s.stat(ctx, "presign", key); err != nil {
		return "", err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.ttl, nil)
	if err != nil {
		return "", storageErr("presign", key, fmt.Errorf("failed to generate presigned URL: %w", err))
	}
	return u.String(), nil
}

// CombineChunks uses server-side compose. S3 semantics require every part
// except the last to be at least 5 MiB.
func (s *MinIOStorage) CombineChunks(ctx context.Context, finalKey string, partKeys []string) error {
	if len(partKeys) == 0 {
		return storageErr("combine", finalKey, errors.New("no parts to combine"))
	}

	srcs := make([]minio.CopySrcOptions, 0, len(partKeys))
	for _, key := range partKeys {
		if _, err := s.stat(ctx, "combine", key); err != nil {
			return storageErr("combine", finalKey, err)
		}
		srcs = append(srcs, minio.CopySrcOptions{Bucket: s.bucket, Object: key})
	}

	dst := minio.CopyDestOptions{
		Bucket:          s.bucket,
		Object:          finalKey,
		ReplaceMetadata: true,
		UserMetadata:    map[string]string{"Content-Type": ContentTypeFor(finalKey)},
	}
	if _, err := s.client.ComposeObject(ctx, dst, srcs...); err != nil {
		return storageErr("combine", finalKey, err)
	}

	for _, key := range consumedParts(finalKey, partKeys) {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func isMinIONotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
