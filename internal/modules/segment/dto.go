package segment

import "courseplatform/internal/domain"

// CreateSegmentInput is the payload for adding a segment. A nil Order places
// the segment after the last one in its module.
type CreateSegmentInput struct {
	Slug     string  `json:"slug" validate:"required,max=200,slug"`
	Title    string  `json:"title" validate:"required,max=255"`
	Content  string  `json:"content"`
	Order    *int    `json:"order" validate:"omitempty,min=0"`
	ModuleID string  `json:"module_id" validate:"required,max=200"`
	VideoKey *string `json:"video_key" validate:"omitempty,max=1024"`
}

// SegmentPatch edits non-video fields.
type SegmentPatch struct {
	Slug     *string `json:"slug" validate:"omitempty,max=200,slug"`
	Title    *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content  *string `json:"content"`
	Order    *int    `json:"order" validate:"omitempty,min=0"`
	ModuleID *string `json:"module_id" validate:"omitempty,min=1,max=200"`
}

func (p SegmentPatch) toUpdate() domain.SegmentUpdate {
	return domain.SegmentUpdate{
		Title:    p.Title,
		Content:  p.Content,
		Order:    p.Order,
		ModuleID: p.ModuleID,
		Slug:     p.Slug,
	}
}

// UpdateSegmentInput edits a segment and optionally replaces its video. The
// new object must already be uploaded under VideoKey.
type UpdateSegmentInput struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content  *string `json:"content"`
	VideoKey *string `json:"video_key" validate:"omitempty,max=1024"`
	ModuleID *string `json:"module_id" validate:"omitempty,min=1,max=200"`
	Slug     *string `json:"slug" validate:"omitempty,max=200,slug"`
}

type CreateAttachmentRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
	FileKey  string `json:"file_key" validate:"required,max=1024"`
}

// AttachmentCleanup is the outcome of tearing down one attachment.
type AttachmentCleanup struct {
	AttachmentID int64  `json:"attachment_id"`
	FileKey      string `json:"file_key"`
	Deleted      bool   `json:"deleted"`
	Error        string `json:"error,omitempty"`
}

// CleanupReport describes what DeleteSegment removed. On failure it tells the
// caller which attachments are left so the delete can be retried.
type CleanupReport struct {
	SegmentID      int64               `json:"segment_id"`
	VideoKey       string              `json:"video_key,omitempty"`
	VideoDeleted   bool                `json:"video_deleted"`
	Attachments    []AttachmentCleanup `json:"attachments"`
	SegmentDeleted bool                `json:"segment_deleted"`
}

// Failed returns the attachments whose cleanup did not complete.
func (r *CleanupReport) Failed() []AttachmentCleanup {
	var out []AttachmentCleanup
	for _, a := range r.Attachments {
		if !a.Deleted {
			out = append(out, a)
		}
	}
	return out
}
