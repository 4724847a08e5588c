package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maynagashev/brewtrack/internal/handlers"
	"github.com/maynagashev/brewtrack/internal/repository"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedCode   string
	}{
		{name: "Хранилище доступно", expectedStatus: http.StatusOK},
		{
			name:           "Таймаут хранилища",
			pingErr:        fmt.Errorf("ping: %w", repository.ErrStoreTimeout),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   handlers.CodeStoreTimeout,
		},
		{
			name:           "Хранилище недоступно",
			pingErr:        fmt.Errorf("ping: %w", repository.ErrStoreUnavailable),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   handlers.CodeStoreUnavailable,
		},
		{
			name:           "Прочая ошибка",
			pingErr:        errors.New("database is locked"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   handlers.CodeStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.Health(pingerFunc(func(context.Context) error { return tt.pingErr }))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rr).Code)
			}
		})
	}
}
