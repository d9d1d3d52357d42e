package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"courseplatform/internal/domain"
)

type AttachmentRepository interface {
	ListBySegment(ctx context.Context, segmentID int64) ([]domain.Attachment, error)
	GetByID(ctx context.Context, id int64) (*domain.Attachment, error)
	Create(ctx context.Context, a *domain.Attachment) error
	Delete(ctx context.Context, id int64) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) ListBySegment(ctx context.Context, segmentID int64) ([]domain.Attachment, error) {
	var attachments []domain.Attachment
	err := r.db.WithContext(ctx).
		Where("segment_id = ?", segmentID).
		Order("created_at ASC, id ASC").
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) GetByID(ctx context.Context, id int64) (*domain.Attachment, error) {
	var a domain.Attachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts the attachment; an unknown segment surfaces as NotFoundError.
func (r *attachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFound("segment", a.SegmentID)
		}
		return err
	}
	return nil
}

// Delete removes one attachment row. A missing row is not an error, so
// cleanup can be retried after a partial failure.
func (r *attachmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Attachment{}).Error
}
