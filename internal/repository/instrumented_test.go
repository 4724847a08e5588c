package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/brewtrack/internal/models"
	"github.com/maynagashev/brewtrack/internal/repository"
)

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

type recordingObserver struct {
	ops []string
}

func (o *recordingObserver) ObserveStoreOperation(operation, result string, _ time.Duration) {
	o.ops = append(o.ops, operation+":"+result)
}

func TestWithObserver(t *testing.T) {
	ctx := context.Background()
	key := models.CounterKey{Project: "rona", Version: "1.0.0", Platform: "all"}

	next := new(MockDownloadRepository)
	next.On("Increment", ctx, key).Return(&models.DownloadCounter{DownloadCount: 1}, nil).Once()
	next.On("Increment", ctx, key).Return(nil, fmt.Errorf("op: %w", repository.ErrStoreTimeout)).Once()
	next.On("ListGrouped", ctx).Return([]models.DownloadCounter{}, nil)
	next.On("Ping", ctx).Return(fmt.Errorf("op: %w", repository.ErrStoreUnavailable))

	observer := &recordingObserver{}
	repo := repository.WithObserver(next, observer)

	counter, err := repo.Increment(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter.DownloadCount)

	_, err = repo.Increment(ctx, key)
	require.ErrorIs(t, err, repository.ErrStoreTimeout)

	_, err = repo.ListGrouped(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, repo.Ping(ctx), repository.ErrStoreUnavailable)

	assert.Equal(t, []string{"increment:ok", "increment:timeout", "list:ok", "ping:unavailable"}, observer.ops)
	next.AssertExpectations(t)
}

func TestWithObserver_Nil(t *testing.T) {
	next := new(MockDownloadRepository)
	assert.Same(t, next, repository.WithObserver(next, nil))
}

func TestResult(t *testing.T) {
	assert.Equal(t, repository.ResultOK, repository.Result(nil))
	assert.Equal(t, repository.ResultConstraint, repository.Result(fmt.Errorf("x: %w", repository.ErrConstraintViolation)))
	assert.Equal(t, repository.ResultFailure, repository.Result(errors.New("boom")))
}
