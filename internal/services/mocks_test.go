package services_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/maynagashev/brewtrack/internal/models"
)

// --- Mocks ---

// MockDownloadRepository - мок repository.DownloadRepository.
type MockDownloadRepository struct {
	mock.Mock
}

func (m *MockDownloadRepository) Increment(
	ctx context.Context,
	key models.CounterKey,
) (*models.DownloadCounter, error) {
	args := m.Called(ctx, key)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.(*models.DownloadCounter), args.Error(1)
}

func (m *MockDownloadRepository) ListGrouped(ctx context.Context) ([]models.DownloadCounter, error) {
	args := m.Called(ctx)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.([]models.DownloadCounter), args.Error(1)
}

func (m *MockDownloadRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockResolver - мок services.Resolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Known(project string) bool {
	return m.Called(project).Bool(0)
}

func (m *MockResolver) Resolve(identity models.BottleIdentity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

// MockStatsService - мок services.StatsService.
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetStats(ctx context.Context) (models.AggregatedStats, error) {
	args := m.Called(ctx)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.(models.AggregatedStats), args.Error(1)
}

// MockFileStorage - мок storage.FileStorage, запоминающий загруженные тела.
type MockFileStorage struct {
	mock.Mock
	uploaded map[string][]byte
}

func (m *MockFileStorage) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	body, _ := io.ReadAll(reader)
	if m.uploaded == nil {
		m.uploaded = make(map[string][]byte)
	}
	m.uploaded[objectKey] = body
	args := m.Called(ctx, objectKey, mock.Anything, size, contentType)
	return args.Error(0)
}

func (m *MockFileStorage) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	args := m.Called(ctx, objectKey)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.(io.ReadCloser), args.Error(1)
}

type recordingSnapshotObserver struct {
	results []string
}

func (o *recordingSnapshotObserver) ObserveSnapshot(result string) {
	o.results = append(o.results, result)
}
