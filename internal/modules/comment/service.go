package comment

import (
	"context"

	"courseplatform/internal/domain"
)

type CommentRepository interface {
	ListBySegment(ctx context.Context, segmentID int64) ([]domain.Comment, error)
}

// Service is read-only; comments are authored elsewhere.
type Service struct {
	comments CommentRepository
}

func NewService(comments CommentRepository) *Service {
	return &Service{comments: comments}
}

// GetComments returns a segment's comments, newest first. An unknown segment
// simply has none.
func (s *Service) GetComments(ctx context.Context, segmentID int64) ([]domain.Comment, error) {
	comments, err := s.comments.ListBySegment(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}
