package main

import (
	"context"
	"fmt"

	"courseplatform/internal/config"
	"courseplatform/internal/storage"
)

// buildStorage selects the backend named in configuration and wraps it with
// metrics.
func buildStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Instrumented, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		local, err := storage.NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL, cfg.SigningSecret, cfg.PresignTTL)
		if err != nil {
			return nil, err
		}
		return storage.NewInstrumented(local, cfg.Backend), nil

	case config.BackendMinIO:
		m, err := storage.NewMinIOStorage(ctx, storage.MinIOOptions{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKeyID,
			SecretAccessKey: cfg.MinIO.SecretAccessKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Bucket:          cfg.MinIO.Bucket,
			PresignTTL:      cfg.PresignTTL,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewInstrumented(m, cfg.Backend), nil

	case config.BackendS3:
		s, err := storage.NewS3Storage(ctx, storage.S3Options{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UsePathStyle:    cfg.S3.UsePathStyle,
			PresignTTL:      cfg.PresignTTL,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewInstrumented(s, cfg.Backend), nil

	case config.BackendMemory:
		return storage.NewInstrumented(storage.NewMemoryStorage(), cfg.Backend), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// localBackend returns the filesystem backend behind s, if that is what s is.
// /files needs it to verify download tokens.
func localBackend(s *storage.Instrumented) *storage.LocalStorage {
	local, _ := s.Unwrap().(*storage.LocalStorage)
	return local
}
