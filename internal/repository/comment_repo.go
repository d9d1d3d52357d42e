package repository

import (
	"context"

	"gorm.io/gorm"

	"courseplatform/internal/domain"
)

type CommentRepository interface {
	ListBySegment(ctx context.Context, segmentID int64) ([]domain.Comment, error)
	Create(ctx context.Context, c *domain.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// ListBySegment returns the segment's comments, newest first, with authors.
func (r *commentRepository) ListBySegment(ctx context.Context, segmentID int64) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("segment_id = ?", segmentID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFound("segment", c.SegmentID)
		}
		return err
	}
	return nil
}
