package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/maynagashev/brewtrack/internal/bottle"
	"github.com/maynagashev/brewtrack/internal/repository"
	"github.com/maynagashev/brewtrack/internal/resolver"
	"github.com/maynagashev/brewtrack/internal/services"
)

// Коды ошибок API, кроме кодов разбора из пакета bottle.
const (
	CodeUnknownProject    = "unknown_project"
	CodeResolveFailed     = "resolve_failed"
	CodeStoreTimeout      = "store_timeout"
	CodeStoreUnavailable  = "store_unavailable"
	CodeStoreFailure      = "store_failure"
	CodeSnapshotsDisabled = "snapshots_disabled"
	CodeInternal          = "internal_error"
)

const msgInternal = "Внутренняя ошибка сервера"

type dataResponse struct {
	Data any `json:"data"`
}

// ErrorBody - тело ошибки API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse - конверт ошибки {"error": {"code", "message"}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// apiError - ошибка, переведенная в HTTP-ответ.
type apiError struct {
	status  int
	code    string
	message string
}

// translateError - единственное место, где ошибки слоев превращаются в статусы HTTP.
// Для внутренних ошибок клиент получает общее сообщение, причина остается в логе.
func translateError(err error) apiError {
	var parseErr *bottle.ParseError
	switch {
	case errors.As(err, &parseErr):
		return apiError{status: http.StatusBadRequest, code: parseErr.Code, message: parseErr.Error()}
	case errors.Is(err, resolver.ErrUnknownProject):
		return apiError{status: http.StatusInternalServerError, code: CodeUnknownProject, message: "Проект не настроен"}
	case errors.Is(err, resolver.ErrInvalidReleaseBase):
		return apiError{status: http.StatusInternalServerError, code: CodeResolveFailed, message: msgInternal}
	case errors.Is(err, repository.ErrStoreTimeout):
		return apiError{
			status:  http.StatusServiceUnavailable,
			code:    CodeStoreTimeout,
			message: "Хранилище не ответило вовремя",
		}
	case errors.Is(err, repository.ErrStoreUnavailable):
		return apiError{status: http.StatusServiceUnavailable, code: CodeStoreUnavailable, message: "Хранилище недоступно"}
	case errors.Is(err, repository.ErrConstraintViolation), errors.Is(err, repository.ErrStoreFailure):
		return apiError{status: http.StatusInternalServerError, code: CodeStoreFailure, message: msgInternal}
	case errors.Is(err, services.ErrSnapshotsDisabled):
		return apiError{
			status:  http.StatusServiceUnavailable,
			code:    CodeSnapshotsDisabled,
			message: "Публикация снимков не настроена",
		}
	default:
		return apiError{status: http.StatusInternalServerError, code: CodeInternal, message: msgInternal}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("[Handlers] Ошибка кодирования ответа: %v", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataResponse{Data: data})
}

// WriteError отправляет конверт ошибки с указанным статусом.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

func writeAPIError(w http.ResponseWriter, e apiError) {
	WriteError(w, e.status, e.code, e.message)
}
