package segment

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"courseplatform/internal/domain"
	"courseplatform/internal/storage"
)

type MockSegmentRepository struct {
	mock.Mock
}

func (m *MockSegmentRepository) List(ctx context.Context) ([]domain.Segment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Segment), args.Error(1)
}

func (m *MockSegmentRepository) GetByID(ctx context.Context, id int64) (*domain.Segment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Segment), args.Error(1)
}

func (m *MockSegmentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Segment, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Segment), args.Error(1)
}

func (m *MockSegmentRepository) Create(ctx context.Context, s *domain.Segment) error {
	args := m.Called(ctx, s)
	if s != nil {
		s.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockSegmentRepository) Update(ctx context.Context, id int64, upd domain.SegmentUpdate) (*domain.Segment, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Segment), args.Error(1)
}

func (m *MockSegmentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSegmentRepository) ModuleNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSegmentRepository) NextOrder(ctx context.Context, moduleID string) (int, error) {
	args := m.Called(ctx, moduleID)
	return args.Int(0), args.Error(1)
}

type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) ListBySegment(ctx context.Context, segmentID int64) ([]domain.Attachment, error) {
	args := m.Called(ctx, segmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) GetByID(ctx context.Context, id int64) (*domain.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	args := m.Called(ctx, a)
	if a != nil {
		a.ID = 555
	}
	return args.Error(0)
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	args := m.Called(ctx, key, r, size)
	return args.Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) GetStream(ctx context.Context, key, rangeHeader string) (*storage.StreamResponse, error) {
	args := m.Called(ctx, key, rangeHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StreamResponse), args.Error(1)
}

func (m *MockStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) CombineChunks(ctx context.Context, finalKey string, partKeys []string) error {
	args := m.Called(ctx, finalKey, partKeys)
	return args.Error(0)
}
