package repository

import (
	"context"
	"errors"
	"time"

	"github.com/maynagashev/brewtrack/internal/models"
)

// StoreObserver получает длительность и результат каждого обращения к хранилищу.
type StoreObserver interface {
	ObserveStoreOperation(operation, result string, duration time.Duration)
}

// Результаты операций для меток метрик.
const (
	ResultOK          = "ok"
	ResultTimeout     = "timeout"
	ResultUnavailable = "unavailable"
	ResultConstraint  = "constraint"
	ResultFailure     = "failure"
)

type instrumentedRepository struct {
	next     DownloadRepository
	observer StoreObserver
}

// WithObserver оборачивает репозиторий замером операций.
// При observer == nil возвращается исходный репозиторий.
func WithObserver(repo DownloadRepository, observer StoreObserver) DownloadRepository {
	if observer == nil {
		return repo
	}
	return &instrumentedRepository{next: repo, observer: observer}
}

func (r *instrumentedRepository) Increment(
	ctx context.Context,
	key models.CounterKey,
) (*models.DownloadCounter, error) {
	start := time.Now()
	counter, err := r.next.Increment(ctx, key)
	r.observer.ObserveStoreOperation("increment", Result(err), time.Since(start))
	return counter, err
}

func (r *instrumentedRepository) ListGrouped(ctx context.Context) ([]models.DownloadCounter, error) {
	start := time.Now()
	counters, err := r.next.ListGrouped(ctx)
	r.observer.ObserveStoreOperation("list", Result(err), time.Since(start))
	return counters, err
}

func (r *instrumentedRepository) Ping(ctx context.Context) error {
	start := time.Now()
	err := r.next.Ping(ctx)
	r.observer.ObserveStoreOperation("ping", Result(err), time.Since(start))
	return err
}

// Result переводит ошибку хранилища в метку результата.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrStoreTimeout):
		return ResultTimeout
	case errors.Is(err, ErrStoreUnavailable):
		return ResultUnavailable
	case errors.Is(err, ErrConstraintViolation):
		return ResultConstraint
	default:
		return ResultFailure
	}
}
