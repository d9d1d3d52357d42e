package segment

import (
	"context"

	"courseplatform/internal/domain"
)

// SegmentRepository is the data access the use-cases need for segments.
type SegmentRepository interface {
	List(ctx context.Context) ([]domain.Segment, error)
	GetByID(ctx context.Context, id int64) (*domain.Segment, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Segment, error)
	Create(ctx context.Context, s *domain.Segment) error
	Update(ctx context.Context, id int64, upd domain.SegmentUpdate) (*domain.Segment, error)
	Delete(ctx context.Context, id int64) error
	ModuleNames(ctx context.Context) ([]string, error)
	NextOrder(ctx context.Context, moduleID string) (int, error)
}

// AttachmentRepository is the data access the use-cases need for attachments.
type AttachmentRepository interface {
	ListBySegment(ctx context.Context, segmentID int64) ([]domain.Attachment, error)
	GetByID(ctx context.Context, id int64) (*domain.Attachment, error)
	Create(ctx context.Context, a *domain.Attachment) error
	Delete(ctx context.Context, id int64) error
}
