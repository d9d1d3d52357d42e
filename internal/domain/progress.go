package domain

import "time"

// Progress marks a segment as completed by a user. One row per (user, segment).
type Progress struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:progress_user_segment_idx" json:"user_id"`
	SegmentID int64     `gorm:"column:segment_id;not null;uniqueIndex:progress_user_segment_idx" json:"segment_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Progress) TableName() string { return "app_progress" }
