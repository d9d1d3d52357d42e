package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"courseplatform/internal/domain"
)

// SegmentRepository is the persistence boundary for segments. Lookups return
// (nil, nil) when the segment does not exist.
type SegmentRepository interface {
	List(ctx context.Context) ([]domain.Segment, error)
	GetByID(ctx context.Context, id int64) (*domain.Segment, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Segment, error)
	Create(ctx context.Context, s *domain.Segment) error
	Update(ctx context.Context, id int64, upd domain.SegmentUpdate) (*domain.Segment, error)
	Delete(ctx context.Context, id int64) error
	ListWithProgress(ctx context.Context, userID int64) ([]domain.SegmentWithProgress, error)
	ModuleNames(ctx context.Context) ([]string, error)
	NextOrder(ctx context.Context, moduleID string) (int, error)
}

type segmentRepository struct {
	db *gorm.DB
}

func NewSegmentRepository(db *gorm.DB) SegmentRepository {
	return &segmentRepository{db: db}
}

const segmentOrder = "module_id ASC, sort_order ASC, id ASC"

func (r *segmentRepository) List(ctx context.Context) ([]domain.Segment, error) {
	var segments []domain.Segment
	err := r.db.WithContext(ctx).Order(segmentOrder).Find(&segments).Error
	return segments, err
}

func (r *segmentRepository) GetByID(ctx context.Context, id int64) (*domain.Segment, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *segmentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Segment, error) {
	return r.first(r.db.WithContext(ctx).Where("slug = ?", slug).Order("id ASC"))
}

func (r *segmentRepository) first(q *gorm.DB) (*domain.Segment, error) {
	var s domain.Segment
	err := q.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *segmentRepository) Create(ctx context.Context, s *domain.Segment) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// Update merges the non-nil fields of upd into the segment and refreshes
// updated_at. The returned segment is re-read after the write.
func (r *segmentRepository) Update(ctx context.Context, id int64, upd domain.SegmentUpdate) (*domain.Segment, error) {
	var out domain.Segment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFound("segment", id)
			}
			return err
		}

		if err := tx.Model(&domain.Segment{}).Where("id = ?", id).Updates(updateColumns(upd)).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func updateColumns(upd domain.SegmentUpdate) map[string]any {
	cols := map[string]any{"updated_at": time.Now()}
	if upd.Title != nil {
		cols["title"] = *upd.Title
	}
	if upd.Content != nil {
		cols["content"] = *upd.Content
	}
	if upd.Order != nil {
		cols["sort_order"] = *upd.Order
	}
	if upd.ModuleID != nil {
		cols["module_id"] = *upd.ModuleID
	}
	if upd.Slug != nil {
		cols["slug"] = *upd.Slug
	}
	if upd.VideoKey != nil {
		cols["video_key"] = *upd.VideoKey
	}
	return cols
}

// Delete removes the segment row. Attachments, comments and progress rows
// go with it through ON DELETE CASCADE.
func (r *segmentRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Segment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFound("segment", id)
	}
	return nil
}

func (r *segmentRepository) ListWithProgress(ctx context.Context, userID int64) ([]domain.SegmentWithProgress, error) {
	segments, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var completed []int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Progress{}).
		Where("user_id = ?", userID).
		Pluck("segment_id", &completed).Error; err != nil {
		return nil, err
	}
	done := make(map[int64]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}

	out := make([]domain.SegmentWithProgress, 0, len(segments))
	for _, s := range segments {
		_, ok := done[s.ID]
		out = append(out, domain.SegmentWithProgress{Segment: s, IsComplete: ok})
	}
	return out, nil
}

func (r *segmentRepository) ModuleNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&domain.Segment{}).
		Distinct("module_id").
		Order("module_id ASC").
		Pluck("module_id", &names).Error
	return names, err
}

func (r *segmentRepository) NextOrder(ctx context.Context, moduleID string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).
		Model(&domain.Segment{}).
		Where("module_id = ?", moduleID).
		Select("COALESCE(MAX(sort_order), -1) + 1").
		Scan(&next).Error
	return next, err
}
