package media

import "errors"

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType  = errors.New("file type is not allowed")
	ErrInvalidKey       = errors.New("object key is required")
	ErrInvalidUploadID  = errors.New("upload id must be a UUID")
	ErrInvalidPartIndex = errors.New("part index out of range")
	ErrInvalidExtension = errors.New("extension must look like .mp4")
)
