package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"courseplatform/internal/domain"
)

type ProgressRepository interface {
	MarkComplete(ctx context.Context, userID, segmentID int64) error
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

// MarkComplete records completion once; repeated calls are no-ops.
func (r *progressRepository) MarkComplete(ctx context.Context, userID, segmentID int64) error {
	p := &domain.Progress{UserID: userID, SegmentID: segmentID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "segment_id"}},
			DoNothing: true,
		}).
		Create(p).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFound("segment", segmentID)
		}
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}
