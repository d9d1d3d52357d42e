package domain

import "time"

// Segment is a unit of course content, grouped into modules by ModuleID.
type Segment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"not null;index:segments_slug_idx" json:"slug"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"not null" json:"content"`
	Order     int       `gorm:"column:sort_order;not null" json:"order"`
	ModuleID  string    `gorm:"column:module_id;not null;index" json:"module_id"`
	VideoKey  *string   `gorm:"column:video_key" json:"video_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attachments []Attachment `gorm:"constraint:OnDelete:CASCADE;" json:"attachments,omitempty"`
	Comments    []Comment    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Progress    []Progress   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (Segment) TableName() string { return "app_segment" }

// HasVideo reports whether the segment references a stored video object.
func (s *Segment) HasVideo() bool {
	return s.VideoKey != nil && *s.VideoKey != ""
}

// SegmentUpdate is a partial update; nil fields are left unchanged.
type SegmentUpdate struct {
	Title    *string
	Content  *string
	Order    *int
	ModuleID *string
	Slug     *string
	VideoKey *string
}

// SegmentWithProgress is a segment joined with one user's completion state.
type SegmentWithProgress struct {
	Segment
	IsComplete bool `json:"is_complete"`
}
