package segment

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"courseplatform/internal/domain"
	"courseplatform/internal/storage"
)

const defaultCleanupConcurrency = 8

// Service orchestrates segment records and the objects they reference.
// Storage side effects happen here only; repositories never touch storage.
type Service struct {
	segments    SegmentRepository
	attachments AttachmentRepository
	store       storage.Storage
	log         logrus.FieldLogger
	concurrency int
}

func NewService(
	segments SegmentRepository,
	attachments AttachmentRepository,
	store storage.Storage,
	log logrus.FieldLogger,
	concurrency int,
) *Service {
	if concurrency <= 0 {
		concurrency = defaultCleanupConcurrency
	}
	return &Service{
		segments:    segments,
		attachments: attachments,
		store:       store,
		log:         log,
		concurrency: concurrency,
	}
}

func (s *Service) ListSegments(ctx context.Context) ([]domain.Segment, error) {
	return s.segments.List(ctx)
}

func (s *Service) ModuleNames(ctx context.Context) ([]string, error) {
	return s.segments.ModuleNames(ctx)
}

func (s *Service) GetSegmentByID(ctx context.Context, id int64) (*domain.Segment, error) {
	return s.load(ctx, id)
}

func (s *Service) GetSegmentBySlug(ctx context.Context, slug string) (*domain.Segment, error) {
	seg, err := s.segments.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if seg == nil {
		return nil, domain.NewNotFound("segment", slug)
	}
	return seg, nil
}

// AddSegment creates a segment. It does not touch storage.
func (s *Service) AddSegment(ctx context.Context, in CreateSegmentInput) (*domain.Segment, error) {
	if err := s.ensureSlugFree(ctx, in.Slug, 0); err != nil {
		return nil, err
	}

	order := 0
	if in.Order != nil {
		order = *in.Order
	} else {
		next, err := s.segments.NextOrder(ctx, in.ModuleID)
		if err != nil {
			return nil, err
		}
		order = next
	}

	seg := &domain.Segment{
		Slug:     in.Slug,
		Title:    in.Title,
		Content:  in.Content,
		Order:    order,
		ModuleID: in.ModuleID,
	}
	if in.VideoKey != nil && *in.VideoKey != "" {
		seg.VideoKey = in.VideoKey
	}

	if err := s.segments.Create(ctx, seg); err != nil {
		return nil, err
	}
	return seg, nil
}

// EditSegment applies a field patch. It never deletes stored objects.
func (s *Service) EditSegment(ctx context.Context, id int64, patch SegmentPatch) (*domain.Segment, error) {
	if patch.Slug != nil {
		if err := s.ensureSlugFree(ctx, *patch.Slug, id); err != nil {
			return nil, err
		}
	}
	return s.segments.Update(ctx, id, patch.toUpdate())
}

// UpdateSegment edits a segment and, when a new video key is supplied,
// deletes the previous video object before persisting the new key. The
// replacement must already be uploaded; without a new key the current video
// is left alone.
func (s *Service) UpdateSegment(ctx context.Context, id int64, in UpdateSegmentInput) (*domain.Segment, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Slug != nil && *in.Slug != current.Slug {
		if err := s.ensureSlugFree(ctx, *in.Slug, id); err != nil {
			return nil, err
		}
	}

	replacing := in.VideoKey != nil && *in.VideoKey != ""
	if replacing && current.HasVideo() && *current.VideoKey != *in.VideoKey {
		if err := s.store.Delete(ctx, *current.VideoKey); err != nil {
			return nil, fmt.Errorf("delete previous video: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"segment_id": id,
			"key":        *current.VideoKey,
		}).Info("previous video deleted")
	}

	upd := domain.SegmentUpdate{
		Title:    in.Title,
		Content:  in.Content,
		ModuleID: in.ModuleID,
		Slug:     in.Slug,
	}
	if replacing {
		upd.VideoKey = in.VideoKey
	}
	return s.segments.Update(ctx, id, upd)
}

// RemoveSegment deletes only the relational record (attachments cascade).
// Stored objects stay in place; use it when media is shared or is reclaimed
// separately.
func (s *Service) RemoveSegment(ctx context.Context, id int64) error {
	return s.segments.Delete(ctx, id)
}

// DeleteSegment tears a segment down together with its stored objects:
// the video first, then every attachment (object, then row) concurrently,
// and the segment row last. If any attachment fails the segment row is kept
// and the returned report lists what is left; calling again is safe.
func (s *Service) DeleteSegment(ctx context.Context, id int64) (*CleanupReport, error) {
	seg, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &CleanupReport{SegmentID: id}
	log := s.log.WithField("segment_id", id)

	if seg.HasVideo() {
		report.VideoKey = *seg.VideoKey
		if err := s.store.Delete(ctx, *seg.VideoKey); err != nil {
			return report, fmt.Errorf("delete video: %w", err)
		}
		report.VideoDeleted = true
		log.WithField("key", *seg.VideoKey).Info("video deleted")
	}

	attachments, err := s.attachments.ListBySegment(ctx, id)
	if err != nil {
		return report, err
	}

	report.Attachments = make([]AttachmentCleanup, len(attachments))
	errs := make([]error, len(attachments))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, a := range attachments {
		report.Attachments[i] = AttachmentCleanup{AttachmentID: a.ID, FileKey: a.FileKey}
		g.Go(func() error {
			if err := s.deleteAttachment(ctx, &a); err != nil {
				report.Attachments[i].Error = err.Error()
				errs[i] = fmt.Errorf("attachment %d: %w", a.ID, err)
				return nil
			}
			report.Attachments[i].Deleted = true
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		log.WithError(err).WithField("failed", len(report.Failed())).Warn("segment delete incomplete")
		return report, err
	}

	if err := s.segments.Delete(ctx, id); err != nil {
		return report, err
	}
	report.SegmentDeleted = true
	log.WithField("attachments", len(attachments)).Info("segment deleted")
	return report, nil
}

func (s *Service) ListAttachments(ctx context.Context, segmentID int64) ([]domain.Attachment, error) {
	if _, err := s.load(ctx, segmentID); err != nil {
		return nil, err
	}
	return s.attachments.ListBySegment(ctx, segmentID)
}

// AddAttachment records an already uploaded object against a segment.
func (s *Service) AddAttachment(ctx context.Context, segmentID int64, fileName, fileKey string) (*domain.Attachment, error) {
	if _, err := s.load(ctx, segmentID); err != nil {
		return nil, err
	}
	a := &domain.Attachment{SegmentID: segmentID, FileName: fileName, FileKey: fileKey}
	if err := s.attachments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAttachment removes the stored object and then the row.
func (s *Service) DeleteAttachment(ctx context.Context, id int64) error {
	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return domain.NewNotFound("attachment", id)
	}
	return s.deleteAttachment(ctx, a)
}

func (s *Service) deleteAttachment(ctx context.Context, a *domain.Attachment) error {
	if a.FileKey != "" {
		if err := s.store.Delete(ctx, a.FileKey); err != nil {
			return err
		}
	}
	if err := s.attachments.Delete(ctx, a.ID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"segment_id":    a.SegmentID,
		"attachment_id": a.ID,
		"key":           a.FileKey,
	}).Debug("attachment deleted")
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Segment, error) {
	seg, err := s.segments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seg == nil {
		return nil, domain.NewNotFound("segment", id)
	}
	return seg, nil
}

// ensureSlugFree rejects a slug held by a segment other than selfID.
func (s *Service) ensureSlugFree(ctx context.Context, slug string, selfID int64) error {
	existing, err := s.segments.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return &domain.ConflictError{Resource: "segment", Field: "slug", Value: slug}
	}
	return nil
}
