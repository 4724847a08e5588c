package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/maynagashev/brewtrack/internal/models"
	"github.com/maynagashev/brewtrack/internal/storage"
)

// Ключи объектов снимков в бакете.
const (
	LatestSnapshotKey = "stats/latest.json"
	archivePrefix     = "stats/archive"
	snapshotMediaType = "application/json"
)

// Ошибки сервиса снимков.
var (
	ErrSnapshotsDisabled = errors.New("публикация снимков не настроена")
	ErrSnapshotNotFound  = errors.New("снимок еще не опубликован")
)

// Snapshot - опубликованный снимок статистики.
type Snapshot struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Data        models.AggregatedStats `json:"data"`
}

// PublishResult содержит ключи загруженных объектов.
type PublishResult struct {
	Latest  string `json:"latest"`
	Archive string `json:"archive"`
}

// SnapshotObserver получает результат каждой публикации.
type SnapshotObserver interface {
	ObserveSnapshot(result string)
}

// SnapshotService публикует снимки статистики в объектное хранилище.
type SnapshotService interface {
	Publish(ctx context.Context) (*PublishResult, error)
	Latest(ctx context.Context) (*Snapshot, error)
	Enabled() bool
}

var _ SnapshotService = (*snapshotService)(nil)

type snapshotService struct {
	stats    StatsService
	storage  storage.FileStorage
	observer SnapshotObserver
	now      func() time.Time
}

// NewSnapshotService создает сервис снимков. При fileStorage == nil
// публикация отключена и методы возвращают ErrSnapshotsDisabled.
func NewSnapshotService(
	statsService StatsService,
	fileStorage storage.FileStorage,
	observer SnapshotObserver,
) SnapshotService {
	return &snapshotService{
		stats:    statsService,
		storage:  fileStorage,
		observer: observer,
		now:      time.Now,
	}
}

func (s *snapshotService) Enabled() bool {
	return s.storage != nil
}

// Publish строит текущую статистику и загружает ее дважды:
// в stats/latest.json и в архив stats/archive/YYYY/MM/DD/<время>-<uuid>.json.
func (s *snapshotService) Publish(ctx context.Context) (*PublishResult, error) {
	if !s.Enabled() {
		return nil, ErrSnapshotsDisabled
	}

	result, err := s.publish(ctx)
	if s.observer != nil {
		if err != nil {
			s.observer.ObserveSnapshot("error")
		} else {
			s.observer.ObserveSnapshot("ok")
		}
	}
	return result, err
}

func (s *snapshotService) publish(ctx context.Context) (*PublishResult, error) {
	data, err := s.stats.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("построение статистики для снимка: %w", err)
	}

	generatedAt := s.now().UTC()
	body, err := json.Marshal(Snapshot{GeneratedAt: generatedAt, Data: data})
	if err != nil {
		return nil, fmt.Errorf("кодирование снимка: %w", err)
	}

	archiveKey := fmt.Sprintf("%s/%s/%s-%s.json",
		archivePrefix,
		generatedAt.Format("2006/01/02"),
		generatedAt.Format("20060102T150405Z"),
		uuid.NewString(),
	)

	// Сначала архив: latest.json не должен ссылаться на несохраненный снимок.
	for _, key := range []string{archiveKey, LatestSnapshotKey} {
		if err = s.storage.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), snapshotMediaType); err != nil {
			log.Errorf("[SnapshotService:Publish] Ошибка загрузки %s: %v", key, err)
			return nil, fmt.Errorf("загрузка снимка %s: %w", key, err)
		}
	}

	log.WithFields(log.Fields{
		"archive":  archiveKey,
		"projects": len(data),
		"bytes":    len(body),
	}).Info("[SnapshotService:Publish] Снимок статистики опубликован")
	return &PublishResult{Latest: LatestSnapshotKey, Archive: archiveKey}, nil
}

// Latest читает последний опубликованный снимок.
func (s *snapshotService) Latest(ctx context.Context) (*Snapshot, error) {
	if !s.Enabled() {
		return nil, ErrSnapshotsDisabled
	}

	reader, err := s.storage.DownloadFile(ctx, LatestSnapshotKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("чтение снимка: %w", err)
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			log.Warnf("[SnapshotService:Latest] Ошибка закрытия объекта: %v", closeErr)
		}
	}()

	var snapshot Snapshot
	if err = json.NewDecoder(reader).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("разбор снимка: %w", err)
	}
	return &snapshot, nil
}
