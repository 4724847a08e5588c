package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// Тип для ключа контекста.
type contextKey string

// SubjectKey - ключ субъекта администраторского токена в контексте.
const SubjectKey contextKey = "subject"

// AdminRole - роль, которую должен нести токен для маршрутов /brew/admin.
const AdminRole = "admin"

// ErrEmptySecret возвращается, если секрет подписи не задан.
var ErrEmptySecret = errors.New("секрет подписи токена не задан")

// AdminClaims - содержимое администраторского JWT.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator проверяет администраторский JWT (HS256) из заголовка Authorization.
func Authenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("[AuthMiddleware] Заголовок Authorization отсутствует")
				writeUnauthorized(w, "Требуется аутентификация")
				return
			}

			// Проверяем формат "Bearer token"
			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" || headerParts[1] == "" {
				log.Warn("[AuthMiddleware] Неверный формат заголовка Authorization")
				writeUnauthorized(w, "Неверный формат токена")
				return
			}

			claims := &AdminClaims{}
			token, err := jwt.ParseWithClaims(headerParts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				log.Warnf("[AuthMiddleware] Ошибка парсинга/валидации токена: %v", err)
				writeUnauthorized(w, "Невалидный токен")
				return
			}

			if claims.Role != AdminRole {
				log.Warnf("[AuthMiddleware] Токен субъекта %q без роли администратора", claims.Subject)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Недостаточно прав")
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			log.Debugf("[AuthMiddleware] Администратор %q аутентифицирован", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubjectFromContext извлекает субъекта токена из контекста запроса.
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}

// IssueAdminToken подписывает администраторский токен для subject со сроком жизни ttl.
func IssueAdminToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := AdminClaims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", message)
}

// writeJSONError повторяет конверт ошибок API: пакет handlers зависит от middleware.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]map[string]string{"error": {"code": code, "message": message}}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("[AuthMiddleware] Ошибка кодирования ответа: %v", err)
	}
}
