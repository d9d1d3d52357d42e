package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Options struct {
	// Endpoint overrides the AWS endpoint, e.g. a Cloudflare R2 account URL.
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
	PresignTTL      time.Duration
}

// S3Storage stores objects in an S3-compatible bucket (AWS S3, Cloudflare R2).
type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

func NewS3Storage(ctx context.Context, opts S3Options) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return NewS3StorageFromClient(client, opts.Bucket, opts.PresignTTL), nil
}

func NewS3StorageFromClient(client *s3.Client, bucket string, ttl time.Duration) *S3Storage {
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		ttl:     ttl,
	}
}

func (s *S3Storage) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	body, size, err := seekableBody(r, size)
	if err != nil {
		return storageErr("upload", key, err)
	}
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(ContentTypeFor(key)),
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}
	_, err = s.client.PutObject(ctx, in)
	return storageErr("upload", key, err)
}

// seekableBody buffers non-seekable readers; request signing needs to rewind.
func seekableBody(r io.Reader, size int64) (io.ReadSeeker, int64, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, size, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isS3NotFound(err) {
		return storageErr("delete", key, err)
	}
	return nil
}

func (s *S3Storage) head(ctx context.Context, op, key string) (*s3.HeadObjectOutput, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, objectNotFound(key)
		}
		return nil, storageErr(op, key, err)
	}
	return out, nil
}

func (s *S3Storage) GetStream(ctx context.Context, key, rangeHeader string) (*StreamResponse, error) {
	head, err := s.head(ctx, "get", key)
	if err != nil {
		return nil, err
	}
	size := aws.ToInt64(head.ContentLength)

	rng, err := ParseRange(rangeHeader, size)
	if err != nil {
		return nil, err
	}

	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if rng != nil {
		in.Range = aws.String(rng.Header())
	}
	out, err := s.client.GetObject(ctx, in)
	if err != nil {
		if isS3NotFound(err) {
			return nil, objectNotFound(key)
		}
		return nil, storageErr("get", key, err)
	}

	contentType := aws.ToString(out.ContentType)
	if contentType == "" {
		contentType = ContentTypeFor(key)
	}
	resp := &StreamResponse{
		Body:          out.Body,
		ContentLength: aws.ToInt64(out.ContentLength),
		ContentType:   contentType,
		Size:          size,
	}
	if rng != nil {
		resp.ContentRange = aws.ToString(out.ContentRange)
		if resp.ContentRange == "" {
			resp.ContentRange = rng.ContentRange(size)
		}
	}
	return resp, nil
}

func (s *S3Storage) PresignedURL(ctx context.Context, key string) (string, error) {
	if _, err := s.head(ctx, "presign", key); err != nil {
		return "", err
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", storageErr("presign", key, err)
	}
	return req.URL, nil
}

// CombineChunks assembles the parts with a server-side multipart copy. Every
// part except the last must be at least 5 MiB.
func (s *S3Storage) CombineChunks(ctx context.Context, finalKey string, partKeys []string) error {
	if len(partKeys) == 0 {
		return storageErr("combine", finalKey, errors.New("no parts to combine"))
	}
	for _, key := range partKeys {
		if _, err := s.head(ctx, "combine", key); err != nil {
			return storageErr("combine", finalKey, err)
		}
	}

	created, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(finalKey),
		ContentType: aws.String(ContentTypeFor(finalKey)),
	})
	if err != nil {
		return storageErr("combine", finalKey, err)
	}

	completed, err := s.copyParts(ctx, finalKey, created.UploadId, partKeys)
	if err == nil {
		_, err = s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
			Bucket:          aws.String(s.bucket),
			Key:             aws.String(finalKey),
			UploadId:        created.UploadId,
			MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
		})
	}
	if err != nil {
		_, _ = s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(s.bucket),
			Key:      aws.String(finalKey),
			UploadId: created.UploadId,
		})
		return storageErr("combine", finalKey, err)
	}

	for _, key := range consumedParts(finalKey, partKeys) {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Storage) copyParts(ctx context.Context, finalKey string, uploadID *string, partKeys []string) ([]types.CompletedPart, error) {
	completed := make([]types.CompletedPart, 0, len(partKeys))
	for i, key := range partKeys {
		partNumber := aws.Int32(int32(i + 1))
		out, err := s.client.UploadPartCopy(ctx, &s3.UploadPartCopyInput{
			Bucket:     aws.String(s.bucket),
			Key:        aws.String(finalKey),
			UploadId:   uploadID,
			PartNumber: partNumber,
			CopySource: aws.String(copySource(s.bucket, key)),
		})
		if err != nil {
			return nil, fmt.Errorf("copy part %d (%s): %w", i+1, key, err)
		}
		var etag *string
		if out.CopyPartResult != nil {
			etag = out.CopyPartResult.ETag
		}
		completed = append(completed, types.CompletedPart{ETag: etag, PartNumber: partNumber})
	}
	return completed, nil
}

func copySource(bucket, key string) string {
	return (&url.URL{Path: bucket + "/" + key}).EscapedPath()
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
