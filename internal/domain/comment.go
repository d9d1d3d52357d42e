package domain

import "time"

type Comment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	SegmentID int64     `gorm:"column:segment_id;not null;index" json:"segment_id"`
	UserID    int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE;" json:"user,omitempty"`
}

func (Comment) TableName() string { return "app_comment" }
