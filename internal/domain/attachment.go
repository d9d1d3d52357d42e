package domain

import "time"

// Attachment is a file stored in object storage and owned by a segment.
type Attachment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	SegmentID int64     `gorm:"column:segment_id;not null;index" json:"segment_id"`
	FileName  string    `gorm:"column:file_name;not null" json:"file_name"`
	FileKey   string    `gorm:"column:file_key;not null" json:"file_key"`
	CreatedAt time.Time `json:"created_at"`
}

func (Attachment) TableName() string { return "app_attachment" }
