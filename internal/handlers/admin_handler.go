package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	appmiddleware "github.com/maynagashev/brewtrack/internal/middleware"
	"github.com/maynagashev/brewtrack/internal/services"
)

// AdminHandler обрабатывает защищенные маршруты /brew/admin.
type AdminHandler struct {
	snapshots services.SnapshotService
}

// NewAdminHandler создает новый экземпляр AdminHandler.
func NewAdminHandler(ss services.SnapshotService) *AdminHandler {
	return &AdminHandler{snapshots: ss}
}

// PublishSnapshot обрабатывает POST /brew/admin/snapshots.
func (h *AdminHandler) PublishSnapshot(w http.ResponseWriter, r *http.Request) {
	subject, _ := appmiddleware.GetSubjectFromContext(r.Context())
	entry := log.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"subject":    subject,
	})

	result, err := h.snapshots.Publish(r.Context())
	if err != nil {
		entry.Errorf("[AdminHandler:PublishSnapshot] Ошибка публикации снимка: %v", err)
		writeAPIError(w, translateError(err))
		return
	}

	entry.Infof("[AdminHandler:PublishSnapshot] Снимок опубликован: %s", result.Archive)
	writeData(w, http.StatusCreated, result)
}
