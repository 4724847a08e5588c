package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/maynagashev/brewtrack/internal/models"
	"github.com/maynagashev/brewtrack/internal/repository"
	"github.com/maynagashev/brewtrack/internal/stats"
)

// StatsService определяет интерфейс сервиса агрегированной статистики.
type StatsService interface {
	GetStats(ctx context.Context) (models.AggregatedStats, error)
}

var _ StatsService = (*statsService)(nil)

type statsService struct {
	repo repository.DownloadRepository
}

// NewStatsService создает сервис статистики.
func NewStatsService(repo repository.DownloadRepository) StatsService {
	return &statsService{repo: repo}
}

// GetStats читает все счетчики и сворачивает их по проектам и версиям.
// Статистика каждый раз строится заново из строк хранилища.
func (s *statsService) GetStats(ctx context.Context) (models.AggregatedStats, error) {
	rows, err := s.repo.ListGrouped(ctx)
	if err != nil {
		log.Errorf("[StatsService:GetStats] Ошибка чтения счетчиков: %v", err)
		return nil, err
	}

	result := stats.Build(rows)
	log.Debugf("[StatsService:GetStats] Статистика построена: %d строк, %d проектов", len(rows), len(result))
	return result, nil
}
