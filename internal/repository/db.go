package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Драйвер PostgreSQL, импортируем для регистрации
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // Драйвер SQLite без cgo
)

// Поддерживаемые драйверы БД.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	maxOpenConns    = 25              // Максимальное количество открытых соединений
	maxIdleConns    = 25              // Максимальное количество простаивающих соединений
	connMaxLifetime = 5 * time.Minute // Максимальное время жизни соединения
	connMaxIdleTime = 5 * time.Minute // Максимальное время простоя соединения

	sqliteBusyTimeoutMs = 5000
)

var (
	//go:embed schema_postgres.sql
	postgresSchema string
	//go:embed schema_sqlite.sql
	sqliteSchema string
)

func init() {
	// sqlx не знает имя драйвера modernc, без этого Rebind не сработает.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open открывает БД выбранного драйвера.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresDB(dsn)
	case DriverSQLite:
		return NewSQLiteDB(dsn)
	default:
		return nil, fmt.Errorf("неизвестный драйвер БД: %q", driver)
	}
}

// NewPostgresDB создает и возвращает новое подключение к PostgreSQL.
func NewPostgresDB(dsn string) (*sqlx.DB, error) {
	log.Info("Подключение к PostgreSQL...")

	db, err := sqlx.Connect(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	log.Info("Подключение к PostgreSQL успешно установлено.")
	return db, nil
}

// NewSQLiteDB открывает файл SQLite (или ":memory:").
// SQLite допускает одного писателя, поэтому пул ограничен одним соединением,
// а ожидание блокировки задается через busy_timeout.
func NewSQLiteDB(dsn string) (*sqlx.DB, error) {
	log.WithField("dsn", dsn).Info("Открытие базы SQLite...")

	db, err := sqlx.Open(DriverSQLite, sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия SQLite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	// Для ":memory:" закрытие последнего соединения уничтожает базу.
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err = db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Warnf("Ошибка закрытия SQLite после неудачного пинга: %v", closeErr)
		}
		return nil, fmt.Errorf("ошибка проверки соединения с SQLite: %w", err)
	}

	log.Info("База SQLite открыта.")
	return db, nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", dsn, sep, sqliteBusyTimeoutMs)
}

// EnsureSchema создает таблицу счетчиков, если ее еще нет. Операция идемпотентна.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	var schema string
	switch db.DriverName() {
	case DriverPostgres:
		schema = postgresSchema
	case DriverSQLite:
		schema = sqliteSchema
	default:
		return fmt.Errorf("схема для драйвера %q не определена", db.DriverName())
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ошибка создания схемы: %w", err)
	}
	log.WithField("driver", db.DriverName()).Info("Схема brew_downloads готова")
	return nil
}
