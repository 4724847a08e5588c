package handlers

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// IndexMessage возвращается на GET /.
const IndexMessage = "brewtrack: учет скачиваний Homebrew-бутылок"

// Pinger проверяет доступность хранилища счетчиков.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Index обрабатывает GET /.
func Index(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"message": IndexMessage})
}

// Ping обрабатывает GET /ping.
func Ping(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("pong\n"))
}

// Health обрабатывает GET /health: 200, если хранилище отвечает, иначе 503.
func Health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			log.Warnf("[Health] Хранилище не отвечает: %v", err)
			e := translateError(err)
			if e.status < http.StatusServiceUnavailable {
				e = apiError{status: http.StatusServiceUnavailable, code: CodeStoreUnavailable, message: "Хранилище недоступно"}
			}
			writeAPIError(w, e)
			return
		}
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
