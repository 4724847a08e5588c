package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"github.com/maynagashev/brewtrack/internal/models"
)

// DefaultTimeout ограничивает каждый запрос к хранилищу, если таймаут не задан.
const DefaultTimeout = 3 * time.Second

// Один атомарный upsert: вставка с count=1 или инкремент существующей строки.
// Оба счетчика растут вместе: скачивание и установка пока не различаются.
const incrementQuery = `INSERT INTO brew_downloads (project, version, platform, download_count, install_count)
	VALUES (?, ?, ?, 1, 1)
	ON CONFLICT (project, version, platform) DO UPDATE SET
		download_count = brew_downloads.download_count + 1,
		install_count = brew_downloads.install_count + 1,
		updated_at = CURRENT_TIMESTAMP
	RETURNING id, project, version, platform, download_count, install_count, created_at, updated_at`

const listQuery = `SELECT id, project, version, platform, download_count, install_count, created_at, updated_at
	FROM brew_downloads
	ORDER BY project, version, platform`

// DownloadRepository определяет методы для работы со счетчиками скачиваний.
type DownloadRepository interface {
	// Increment атомарно создает строку с count=1 или увеличивает счетчики.
	Increment(ctx context.Context, key models.CounterKey) (*models.DownloadCounter, error)
	// ListGrouped возвращает все строки, упорядоченные по проекту, версии и платформе.
	ListGrouped(ctx context.Context) ([]models.DownloadCounter, error)
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}

// sqlDownloadRepository реализует DownloadRepository для PostgreSQL и SQLite.
type sqlDownloadRepository struct {
	db        *sqlx.DB
	timeout   time.Duration
	increment string
	list      string
}

// NewDownloadRepository создает новый экземпляр репозитория счетчиков.
// timeout <= 0 заменяется на DefaultTimeout.
func NewDownloadRepository(db *sqlx.DB, timeout time.Duration) DownloadRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &sqlDownloadRepository{db: db, timeout: timeout, increment: incrementQuery, list: listQuery}
	if db != nil {
		r.increment = db.Rebind(incrementQuery)
		r.list = db.Rebind(listQuery)
	}
	return r
}

// counterRow - строка в том виде, в каком ее возвращают драйверы.
type counterRow struct {
	ID            int64  `db:"id"`
	Project       string `db:"project"`
	Version       string `db:"version"`
	Platform      string `db:"platform"`
	DownloadCount int64  `db:"download_count"`
	InstallCount  int64  `db:"install_count"`
	CreatedAt     dbTime `db:"created_at"`
	UpdatedAt     dbTime `db:"updated_at"`
}

func (c counterRow) model() models.DownloadCounter {
	return models.DownloadCounter{
		ID:            c.ID,
		Project:       c.Project,
		Version:       c.Version,
		Platform:      c.Platform,
		DownloadCount: c.DownloadCount,
		InstallCount:  c.InstallCount,
		CreatedAt:     c.CreatedAt.Time,
		UpdatedAt:     c.UpdatedAt.Time,
	}
}

// Increment увеличивает счетчики бутылки одним запросом INSERT ... ON CONFLICT DO UPDATE.
func (r *sqlDownloadRepository) Increment(
	ctx context.Context,
	key models.CounterKey,
) (*models.DownloadCounter, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var row counterRow
	err := r.db.GetContext(ctx, &row, r.increment, key.Project, key.Version, key.Platform)
	if err != nil {
		log.Errorf("[DownloadRepo] Ошибка инкремента %s/%s/%s: %v", key.Project, key.Version, key.Platform, err)
		return nil, classify(ctx, "инкремент счетчика", err)
	}

	counter := row.model()
	log.Debugf("[DownloadRepo] Счетчик %s/%s/%s = %d",
		key.Project, key.Version, key.Platform, counter.DownloadCount)
	return &counter, nil
}

// ListGrouped возвращает снимок всех счетчиков.
func (r *sqlDownloadRepository) ListGrouped(ctx context.Context) ([]models.DownloadCounter, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rows []counterRow
	if err := r.db.SelectContext(ctx, &rows, r.list); err != nil {
		log.Errorf("[DownloadRepo] Ошибка получения счетчиков: %v", err)
		return nil, classify(ctx, "чтение счетчиков", err)
	}

	counters := make([]models.DownloadCounter, 0, len(rows))
	for _, row := range rows {
		counters = append(counters, row.model())
	}
	log.Debugf("[DownloadRepo] Получено %d строк счетчиков", len(counters))
	return counters, nil
}

// Ping проверяет соединение с БД под тем же таймаутом.
func (r *sqlDownloadRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.db.PingContext(ctx); err != nil {
		return classify(ctx, "проверка соединения", err)
	}
	return nil
}

// dbTime принимает время как time.Time (lib/pq) или строкой (SQLite, RETURNING).
type dbTime struct {
	time.Time
}

var sqliteTimeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// Scan реализует sql.Scanner.
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case int64:
		t.Time = time.Unix(v, 0).UTC()
		return nil
	default:
		return fmt.Errorf("неподдерживаемый тип времени %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range sqliteTimeFormats {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("не удалось разобрать время %q", s)
}
