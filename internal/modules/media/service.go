package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"courseplatform/internal/domain"
	"courseplatform/internal/storage"
)

const (
	DefaultMaxFileSize = 500 * 1024 * 1024 // 500 MB
	MaxParts           = 10000
	sniffLen           = 512
)

// AllowedMimeTypes defines which sniffed file types are accepted
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"audio/mpeg":      true,
	"application/pdf": true,
	"application/zip": true,
	"text/plain":      true,
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// allowedExts are the extensions a chunked upload may be stored under.
var allowedExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".mp4": true, ".m4v": true, ".webm": true, ".mp3": true,
	".pdf": true, ".zip": true, ".txt": true,
}

// Service puts course media into storage and hands out read access. It is
// the caller that uploads a replacement video before the segment update.
type Service struct {
	store   storage.Storage
	maxSize int64
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewService(store storage.Storage, maxSize int64, log logrus.FieldLogger) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Service{store: store, maxSize: maxSize, log: log, now: time.Now}
}

// Upload stores a single multipart file under a fresh key.
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*UploadResult, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Detect MIME type from first 512 bytes
	buf := make([]byte, sniffLen)
	n, _ := io.ReadFull(file, buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	ext := strings.ToLower(path.Ext(fileHeader.Filename))
	if !extPattern.MatchString(ext) {
		ext = mimeToExt(mimeType)
	}
	key := s.newKey(ext)
	if err := s.store.Upload(ctx, key, file, fileHeader.Size); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"key": key, "size": fileHeader.Size, "mime_type": mimeType}).Info("media uploaded")
	return &UploadResult{
		Key:      key,
		Name:     fileHeader.Filename,
		MimeType: mimeType,
		Size:     fileHeader.Size,
	}, nil
}

// StartUpload allocates an id for a chunked upload.
func (s *Service) StartUpload() string {
	return uuid.NewString()
}

// UploadPart stores one chunk of a chunked upload. Parts may arrive in any
// order and re-sending a part overwrites it.
func (s *Service) UploadPart(ctx context.Context, uploadID string, index int, r io.Reader, size int64) error {
	id, err := uuid.Parse(uploadID)
	if err != nil {
		return ErrInvalidUploadID
	}
	if index < 0 || index >= MaxParts {
		return ErrInvalidPartIndex
	}
	if size == 0 {
		return ErrEmptyFile
	}
	if size > s.maxSize {
		return ErrFileTooLarge
	}
	return s.store.Upload(ctx, PartKey(id.String(), index), r, size)
}

// CompleteUpload combines parts 0..parts-1 into a fresh key. The first part
// is sniffed against AllowedMimeTypes and the combined object must fit in
// maxSize; rejected uploads leave nothing behind.
func (s *Service) CompleteUpload(ctx context.Context, uploadID string, parts int, ext string) (*UploadResult, error) {
	id, err := uuid.Parse(uploadID)
	if err != nil {
		return nil, ErrInvalidUploadID
	}
	uploadID = id.String()
	if parts <= 0 || parts > MaxParts {
		return nil, ErrInvalidPartIndex
	}
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if !allowedExts[ext] {
		return nil, ErrInvalidExtension
	}

	keys := make([]string, parts)
	for i := range keys {
		keys[i] = PartKey(uploadID, i)
	}

	mimeType, err := s.sniff(ctx, keys[0])
	if err != nil {
		return nil, err
	}
	if !AllowedMimeTypes[mimeType] {
		s.discard(ctx, keys...)
		return nil, ErrInvalidMimeType
	}

	key := s.newKey(ext)
	if err := s.store.CombineChunks(ctx, key, keys); err != nil {
		return nil, err
	}

	size, err := s.objectSize(ctx, key)
	if err != nil {
		return nil, err
	}
	if size > s.maxSize {
		s.discard(ctx, key)
		return nil, ErrFileTooLarge
	}

	s.log.WithFields(logrus.Fields{"key": key, "upload_id": uploadID, "parts": parts, "size": size}).Info("chunked upload combined")
	return &UploadResult{Key: key, MimeType: storage.ContentTypeFor(key), Size: size}, nil
}

// sniff detects the MIME type of the first sniffLen bytes of key.
func (s *Service) sniff(ctx context.Context, key string) (string, error) {
	resp, err := s.store.GetStream(ctx, key, fmt.Sprintf("bytes=0-%d", sniffLen-1))
	if err != nil {
		return "", &domain.StorageError{Op: "combine", Key: key, Err: err}
	}
	defer resp.Body.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(resp.Body, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", &domain.StorageError{Op: "combine", Key: key, Err: err}
	}
	return strings.Split(http.DetectContentType(buf[:n]), ";")[0], nil
}

func (s *Service) objectSize(ctx context.Context, key string) (int64, error) {
	resp, err := s.store.GetStream(ctx, key, "bytes=0-0")
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.Size, nil
}

func (s *Service) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("failed to discard rejected upload")
		}
	}
}

func (s *Service) Stream(ctx context.Context, key, rangeHeader string) (*storage.StreamResponse, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	return s.store.GetStream(ctx, key, rangeHeader)
}

func (s *Service) PresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	return s.store.PresignedURL(ctx, key)
}

// PartKey is where chunk index of uploadID is stored.
func PartKey(uploadID string, index int) string {
	return fmt.Sprintf("parts/%s/%05d", uploadID, index)
}

// newKey builds media/YYYY/MM/DD/<uuid><ext>.
func (s *Service) newKey(ext string) string {
	now := s.now().UTC()
	return fmt.Sprintf("media/%d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), uuid.NewString(), ext)
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "audio/mpeg":
		return ".mp3"
	case "application/pdf":
		return ".pdf"
	case "application/zip":
		return ".zip"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}
