package progress

import (
	"context"

	"courseplatform/internal/domain"
)

type ProgressRepository interface {
	MarkComplete(ctx context.Context, userID, segmentID int64) error
}

type SegmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Segment, error)
	ListWithProgress(ctx context.Context, userID int64) ([]domain.SegmentWithProgress, error)
}

type Service struct {
	progress ProgressRepository
	segments SegmentRepository
}

func NewService(progress ProgressRepository, segments SegmentRepository) *Service {
	return &Service{progress: progress, segments: segments}
}

// MarkComplete records that userID finished segmentID. Repeating it is a no-op.
func (s *Service) MarkComplete(ctx context.Context, userID, segmentID int64) error {
	seg, err := s.segments.GetByID(ctx, segmentID)
	if err != nil {
		return err
	}
	if seg == nil {
		return domain.NewNotFound("segment", segmentID)
	}
	return s.progress.MarkComplete(ctx, userID, segmentID)
}

func (s *Service) ListWithProgress(ctx context.Context, userID int64) ([]domain.SegmentWithProgress, error) {
	items, err := s.segments.ListWithProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.SegmentWithProgress{}
	}
	return items, nil
}
