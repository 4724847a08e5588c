// Package metrics содержит метрики Prometheus сервиса brewtrack.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "brewtrack"

// Metrics хранит все метрики сервиса. Методы безопасно вызывать на nil.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Отслеживание скачиваний
	TrackOutcomesTotal *prometheus.CounterVec
	DownloadsTotal     *prometheus.CounterVec

	// Хранилище счетчиков
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// Снимки статистики
	SnapshotsTotal *prometheus.CounterVec
}

// NewMetrics создает метрики и регистрирует их в registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TrackOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "track_outcomes_total",
				Help:      "Tracking requests by terminal state and error code",
			},
			[]string{"state", "code"},
		),
		DownloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloads_total",
				Help:      "Recorded bottle downloads since process start",
			},
			[]string{"project", "platform"},
		),
		StoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Counter store operations by result",
			},
			[]string{"operation", "result"},
		),
		StoreOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Counter store operation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 3},
			},
			[]string{"operation"},
		),
		SnapshotsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_total",
				Help:      "Published stats snapshots by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TrackOutcomesTotal,
		m.DownloadsTotal,
		m.StoreOperationsTotal,
		m.StoreOperationDuration,
		m.SnapshotsTotal,
	)

	return m
}

// ObserveHTTPRequest учитывает обработанный HTTP-запрос.
func (m *Metrics) ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveTrack учитывает конечное состояние запроса отслеживания.
// code пустой для успешного перенаправления.
func (m *Metrics) ObserveTrack(state, code string) {
	if m == nil {
		return
	}
	m.TrackOutcomesTotal.WithLabelValues(state, code).Inc()
}

// ObserveDownload учитывает записанное скачивание.
func (m *Metrics) ObserveDownload(project, platform string) {
	if m == nil {
		return
	}
	m.DownloadsTotal.WithLabelValues(project, platform).Inc()
}

// ObserveStoreOperation учитывает обращение к хранилищу счетчиков.
func (m *Metrics) ObserveStoreOperation(operation, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.StoreOperationsTotal.WithLabelValues(operation, result).Inc()
	m.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveSnapshot учитывает попытку публикации снимка.
func (m *Metrics) ObserveSnapshot(result string) {
	if m == nil {
		return
	}
	m.SnapshotsTotal.WithLabelValues(result).Inc()
}

// Handler возвращает обработчик /metrics для своего реестра.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
