package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/maynagashev/brewtrack/internal/bottle"
	"github.com/maynagashev/brewtrack/internal/config"
	"github.com/maynagashev/brewtrack/internal/handlers"
	"github.com/maynagashev/brewtrack/internal/metrics"
	"github.com/maynagashev/brewtrack/internal/repository"
	"github.com/maynagashev/brewtrack/internal/resolver"
	"github.com/maynagashev/brewtrack/internal/services"
	"github.com/maynagashev/brewtrack/internal/storage"
)

// Подменяются в тестах.
var (
	openDB         = repository.Open
	newFileStorage = func(ctx context.Context, cfg storage.MinioConfig) (storage.FileStorage, error) {
		return storage.NewMinioClient(ctx, cfg)
	}
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db        *sqlx.DB
	repo      repository.DownloadRepository
	registry  *resolver.Registry
	metrics   *metrics.Metrics
	tracking  services.TrackingService
	stats     services.StatsService
	snapshots services.SnapshotService
}

// setupDependencies открывает хранилище, загружает реестр проектов и собирает сервисы.
func setupDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}
	var err error

	// 1. Подключение к БД и схема
	deps.db, err = openDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}
	if err = repository.EnsureSchema(ctx, deps.db); err != nil {
		deps.close()
		return nil, fmt.Errorf("ошибка создания схемы: %w", err)
	}

	// 2. Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.metrics = metrics.NewMetrics(registry)

	// 3. Реестр проектов
	deps.registry, err = resolver.LoadRegistry(cfg.Brew.ProjectsFile)
	if err != nil {
		deps.close()
		return nil, fmt.Errorf("ошибка загрузки реестра проектов: %w", err)
	}

	// 4. Объектное хранилище для снимков (необязательно).
	// Интерфейс остается nil, если MinIO не настроен: так сервис снимков понимает, что он выключен.
	var fileStorage storage.FileStorage
	if cfg.Minio.Enabled() {
		fileStorage, err = newFileStorage(ctx, cfg.Minio)
		if err != nil {
			deps.close()
			return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
		}
	} else {
		log.Info("[Deps] MinIO не настроен, публикация снимков отключена")
	}

	// 5. Репозиторий и сервисы
	deps.repo = repository.WithObserver(
		repository.NewDownloadRepository(deps.db, cfg.Database.StoreTimeout),
		deps.metrics,
	)
	deps.tracking = services.NewTrackingService(bottle.NewParser(cfg.Brew.ExtraPlatforms...), deps.repo, deps.registry)
	deps.stats = services.NewStatsService(deps.repo)
	deps.snapshots = services.NewSnapshotService(deps.stats, fileStorage, deps.metrics)

	return deps, nil
}

// routerOptions собирает параметры HTTP-роутера из зависимостей.
func (d *dependencies) routerOptions(cfg *config.Config) handlers.RouterOptions {
	return handlers.RouterOptions{
		Brew:           handlers.NewBrewHandler(d.tracking, d.stats, d.metrics),
		Admin:          handlers.NewAdminHandler(d.snapshots),
		AdminSecret:    []byte(cfg.AdminJWTSecret),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        d.metrics,
		Health:         d.repo,
	}
}

func (d *dependencies) close() {
	if d.db == nil {
		return
	}
	if err := d.db.Close(); err != nil {
		log.Errorf("[Deps] Ошибка закрытия соединения с БД: %v", err)
	}
}
