package middleware_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/brewtrack/internal/middleware"
)

var testSecret = []byte("test-admin-secret")

func TestGetSubjectFromContext(t *testing.T) {
	tests := []struct {
		name            string
		ctx             context.Context
		expectedSubject string
		expectedOK      bool
	}{
		{
			name:            "Контекст с субъектом",
			ctx:             context.WithValue(context.Background(), middleware.SubjectKey, "ops"),
			expectedSubject: "ops",
			expectedOK:      true,
		},
		{
			name:       "Пустой контекст",
			ctx:        context.Background(),
			expectedOK: false,
		},
		{
			name:       "Субъект неверного типа",
			ctx:        context.WithValue(context.Background(), middleware.SubjectKey, 42),
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, ok := middleware.GetSubjectFromContext(tt.ctx)
			assert.Equal(t, tt.expectedSubject, subject)
			assert.Equal(t, tt.expectedOK, ok)
		})
	}
}

// Вспомогательная функция для генерации JWT токена с произвольной ролью.
func generateTestToken(t *testing.T, role string, secret []byte, expiresAt time.Time) string {
	t.Helper()
	claims := middleware.AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err, "Ошибка генерации тестового токена")
	return token
}

func TestAuthenticator(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := middleware.GetSubjectFromContext(r.Context())
		assert.True(t, ok, "Субъект должен быть в контексте")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(fmt.Sprintf("OK for %s", subject)))
	})

	server := httptest.NewServer(middleware.Authenticator(testSecret)(nextHandler))
	defer server.Close()

	issued, err := middleware.IssueAdminToken(testSecret, "ops", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Успешная аутентификация",
			header:         "Bearer " + issued,
			expectedStatus: http.StatusOK,
			expectedBody:   "OK for ops",
		},
		{
			name:           "Нет заголовка Authorization",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Требуется аутентификация",
		},
		{
			name:           "Нет слова Bearer",
			header:         issued,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Неверный формат токена",
		},
		{
			name:           "Лишнее слово",
			header:         "Bearer extra " + issued,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Неверный формат токена",
		},
		{
			name:           "Неверный секрет",
			header:         "Bearer " + generateTestToken(t, middleware.AdminRole, []byte("wrong"), time.Now().Add(time.Hour)),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Невалидный токен",
		},
		{
			name:           "Истекший токен",
			header:         "Bearer " + generateTestToken(t, middleware.AdminRole, testSecret, time.Now().Add(-time.Hour)),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Невалидный токен",
		},
		{
			name:           "Мусор вместо токена",
			header:         "Bearer garbage",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Невалидный токен",
		},
		{
			name:           "Нет роли администратора",
			header:         "Bearer " + generateTestToken(t, "viewer", testSecret, time.Now().Add(time.Hour)),
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"code":"forbidden"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, server.URL, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			bodyBytes, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(bodyBytes), tt.expectedBody)
		})
	}
}

func TestIssueAdminToken_EmptySecret(t *testing.T) {
	_, err := middleware.IssueAdminToken(nil, "ops", time.Hour)
	require.ErrorIs(t, err, middleware.ErrEmptySecret)
}
