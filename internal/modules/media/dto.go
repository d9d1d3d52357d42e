package media

// UploadResult describes a stored object. Key is what segments and
// attachments reference.
type UploadResult struct {
	Key      string `json:"key"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size,omitempty"`
}

type StartUploadResponse struct {
	UploadID string `json:"upload_id"`
}

type CompleteUploadRequest struct {
	Parts    int    `json:"parts" validate:"required,min=1,max=10000"`
	Ext      string `json:"ext" validate:"required,max=9"`
	FileName string `json:"file_name" validate:"omitempty,max=255"`
}

type PresignedURLResponse struct {
	URL string `json:"url"`
}
