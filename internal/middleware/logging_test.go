package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/brewtrack/internal/middleware"
)

func TestRequestLogger(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	tests := []struct {
		name          string
		status        int
		expectedLevel log.Level
	}{
		{name: "Успешный запрос", status: http.StatusOK, expectedLevel: log.InfoLevel},
		{name: "Редирект", status: http.StatusFound, expectedLevel: log.InfoLevel},
		{name: "Ошибка клиента", status: http.StatusBadRequest, expectedLevel: log.WarnLevel},
		{name: "Ошибка сервера", status: http.StatusServiceUnavailable, expectedLevel: log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()
			handler := middleware.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/brew/stats", nil))

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tt.expectedLevel, entry.Level)
			assert.Equal(t, tt.status, entry.Data["status"])
			assert.Equal(t, "/brew/stats", entry.Data["path"])
			assert.Equal(t, http.MethodGet, entry.Data["method"])
		})
	}
}

type recordingHTTPObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingHTTPObserver) ObserveHTTPRequest(method, route, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, method+" "+route+" "+status)
}

func TestMetrics(t *testing.T) {
	observer := &recordingHTTPObserver{}
	r := chi.NewRouter()
	r.Use(middleware.Metrics(observer))
	r.Get("/brew/track/{project}/{filename}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	for _, path := range []string{
		"/brew/track/rona/rona-1.0.0.sonoma.bottle.tar.gz",
		"/brew/track/rona/rona-1.0.1.sonoma.bottle.tar.gz",
		"/ping",
		"/nope",
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{
		"GET /brew/track/{project}/{filename} 302",
		"GET /brew/track/{project}/{filename} 302",
		"GET /ping 200",
		"GET unmatched 404",
	}, observer.calls)
}
