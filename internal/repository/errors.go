package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
	"modernc.org/sqlite"
)

// Ошибки хранилища счетчиков. Все они оборачивают исходную ошибку драйвера.
var (
	ErrStoreTimeout        = errors.New("превышено время ожидания хранилища")
	ErrConstraintViolation = errors.New("нарушено ограничение целостности")
	ErrStoreUnavailable    = errors.New("хранилище недоступно")
	ErrStoreFailure        = errors.New("ошибка хранилища")
)

// Коды ошибок.
const (
	pgClassIntegrity  = "23" // integrity_constraint_violation
	pgClassConnection = "08" // connection_exception

	sqliteConstraint = 19 // SQLITE_CONSTRAINT
	sqliteBusy       = 5  // SQLITE_BUSY
	sqliteLocked     = 6  // SQLITE_LOCKED
)

// classify приводит ошибку драйвера к одной из ошибок хранилища.
// ctx - контекст с таймаутом, под которым выполнялся запрос.
func classify(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreTimeout, err)
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		switch string(pgErr.Code.Class()) {
		case pgClassIntegrity:
			return fmt.Errorf("%s: %w: %w", op, ErrConstraintViolation, err)
		case pgClassConnection:
			return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
		}
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff { // младший байт - основной код
		case sqliteConstraint:
			return fmt.Errorf("%s: %w: %w", op, ErrConstraintViolation, err)
		case sqliteBusy, sqliteLocked:
			return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
		}
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}
