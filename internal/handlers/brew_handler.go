package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/maynagashev/brewtrack/internal/bottle"
	"github.com/maynagashev/brewtrack/internal/services"
)

// TrackObserver получает итог каждого запроса отслеживания.
type TrackObserver interface {
	ObserveTrack(state, code string)
	ObserveDownload(project, platform string)
}

// BrewHandler обрабатывает публичные маршруты /brew.
type BrewHandler struct {
	tracking services.TrackingService
	stats    services.StatsService
	observer TrackObserver
}

// NewBrewHandler создает новый экземпляр BrewHandler. observer может быть nil.
func NewBrewHandler(ts services.TrackingService, ss services.StatsService, observer TrackObserver) *BrewHandler {
	return &BrewHandler{tracking: ts, stats: ss, observer: observer}
}

// Track обрабатывает GET /brew/track/{project}/{filename}:
// учитывает скачивание и перенаправляет на настоящий артефакт.
func (h *BrewHandler) Track(w http.ResponseWriter, r *http.Request) {
	project := chi.URLParam(r, "project")
	filename := chi.URLParam(r, "filename")

	// chi берет параметры из RawPath, Homebrew кодирует '+' и '@' как %2B и %40.
	var outcome services.TrackOutcome
	if p, f, err := unescapeTrackParams(project, filename); err != nil {
		outcome = services.TrackOutcome{
			State: services.StateRejected,
			Err: &bottle.ParseError{
				Code:  bottle.CodeUnrecognizedFilename,
				Input: filename,
				Err:   bottle.ErrUnrecognizedFilename,
			},
		}
	} else {
		project, filename = p, f
		outcome = h.tracking.Track(r.Context(), project, filename)
	}
	if outcome.Err != nil {
		apiErr := translateError(outcome.Err)
		entry := log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"project":    project,
			"filename":   filename,
			"state":      outcome.State.String(),
			"code":       apiErr.code,
		})
		if apiErr.status >= http.StatusInternalServerError {
			entry.Errorf("[BrewHandler:Track] Запрос не обработан: %v", outcome.Err)
		} else {
			entry.Infof("[BrewHandler:Track] Запрос отклонен: %v", outcome.Err)
		}
		h.observeTrack(outcome, apiErr.code)
		writeAPIError(w, apiErr)
		return
	}

	http.Redirect(w, r, outcome.Location, http.StatusFound)
	outcome.Redirected()

	h.observeTrack(outcome, "")
	if h.observer != nil {
		h.observer.ObserveDownload(outcome.Identity.Project, outcome.Identity.Platform)
	}
	log.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"project":    outcome.Identity.Project,
		"version":    outcome.Identity.Version,
		"platform":   outcome.Identity.Platform,
	}).Infof("[BrewHandler:Track] Перенаправление на %s", outcome.Location)
}

// Stats обрабатывает GET /brew/stats.
func (h *BrewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.stats.GetStats(r.Context())
	if err != nil {
		apiErr := translateError(err)
		log.WithField("request_id", middleware.GetReqID(r.Context())).
			Errorf("[BrewHandler:Stats] Ошибка получения статистики: %v", err)
		writeAPIError(w, apiErr)
		return
	}

	writeData(w, http.StatusOK, result)
}

func unescapeTrackParams(project, filename string) (string, string, error) {
	p, err := url.PathUnescape(project)
	if err != nil {
		return "", "", err
	}
	f, err := url.PathUnescape(filename)
	if err != nil {
		return "", "", err
	}
	return p, f, nil
}

func (h *BrewHandler) observeTrack(outcome services.TrackOutcome, code string) {
	if h.observer == nil {
		return
	}
	h.observer.ObserveTrack(outcome.State.String(), code)
}
