// Package config собирает конфигурацию сервиса из переменных окружения и файла .env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/maynagashev/brewtrack/internal/logging"
	"github.com/maynagashev/brewtrack/internal/repository"
	"github.com/maynagashev/brewtrack/internal/storage"
)

// Переменные окружения.
const (
	EnvServerHost       = "SERVER_HOST"
	EnvServerPort       = "SERVER_PORT"
	EnvReadTimeout      = "SERVER_READ_TIMEOUT"
	EnvWriteTimeout     = "SERVER_WRITE_TIMEOUT"
	EnvIdleTimeout      = "SERVER_IDLE_TIMEOUT"
	EnvShutdownTimeout  = "SERVER_SHUTDOWN_TIMEOUT"
	EnvTLSCertFile      = "TLS_CERT_FILE"
	EnvTLSKeyFile       = "TLS_KEY_FILE"
	EnvDatabaseDriver   = "DATABASE_DRIVER"
	EnvDatabaseDSN      = "DATABASE_DSN"
	EnvStoreTimeout     = "STORE_TIMEOUT"
	EnvProjectsFile     = "PROJECTS_FILE"
	EnvExtraPlatforms   = "BREW_EXTRA_PLATFORMS"
	EnvAllowedOrigins   = "ALLOWED_ORIGINS"
	EnvAdminJWTSecret   = "ADMIN_JWT_SECRET" //nolint:gosec // Имя переменной окружения, а не секрет
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"
	EnvLogFile          = "LOG_FILE"
	EnvMinioEndpoint    = "MINIO_ENDPOINT"
	EnvMinioUser        = "MINIO_USER"
	EnvMinioPassword    = "MINIO_PASSWORD" //nolint:gosec // Имя переменной окружения, а не секрет
	EnvMinioBucket      = "MINIO_BUCKET"
	EnvMinioUseSSL      = "MINIO_USE_SSL"
	EnvMinioRegion      = "MINIO_REGION"
	EnvSnapshotSchedule = "SNAPSHOT_SCHEDULE"
)

// Значения по умолчанию.
const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = "8000"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 30 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultDatabaseDriver  = repository.DriverSQLite
	DefaultDatabaseDSN     = "brewtrack.db"
	DefaultStoreTimeout    = 3 * time.Second
	DefaultMinioUser       = "minioadmin"
	DefaultMinioPassword   = "minioadmin"
	DefaultMinioBucket     = "brewtrack-stats"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = logging.FormatText
)

// Config - конфигурация сервиса.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Brew     BrewConfig
	Log      logging.Options
	Minio    storage.MinioConfig

	// AdminJWTSecret - ключ подписи токенов администратора. Пустой ключ отключает админские маршруты.
	AdminJWTSecret string
	// SnapshotSchedule - cron-выражение публикации снимков статистики. Пустое - публикация по расписанию выключена.
	SnapshotSchedule string
}

// ServerConfig - параметры HTTP-сервера.
type ServerConfig struct {
	Host            string
	Port            string
	CertFile        string
	KeyFile         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig - параметры хранилища счетчиков.
type DatabaseConfig struct {
	Driver       string
	DSN          string
	StoreTimeout time.Duration
}

// BrewConfig - параметры разбора и перенаправления бутылок.
type BrewConfig struct {
	ProjectsFile   string
	ExtraPlatforms []string
}

// Load читает .env (если файл есть) и переменные окружения.
// Уже заданные переменные окружения имеют приоритет над .env.
// Проверка выполняется отдельно через Validate, после применения флагов командной строки.
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("ошибка чтения %s: %w", dotenvPath, err)
			}
		} else {
			log.Debugf("[Config] Загружены переменные из %s", dotenvPath)
		}
	}
	return FromEnv(), nil
}

// FromEnv собирает конфигурацию из переменных окружения.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            getEnv(EnvServerHost, DefaultServerHost),
			Port:            getEnv(EnvServerPort, DefaultServerPort),
			CertFile:        getEnv(EnvTLSCertFile, ""),
			KeyFile:         getEnv(EnvTLSKeyFile, ""),
			ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
			WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
			IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
			ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),
			AllowedOrigins:  getEnvList(EnvAllowedOrigins),
		},
		Database: DatabaseConfig{
			Driver:       getEnv(EnvDatabaseDriver, DefaultDatabaseDriver),
			DSN:          getEnv(EnvDatabaseDSN, DefaultDatabaseDSN),
			StoreTimeout: getEnvDuration(EnvStoreTimeout, DefaultStoreTimeout),
		},
		Brew: BrewConfig{
			ProjectsFile:   getEnv(EnvProjectsFile, ""),
			ExtraPlatforms: getEnvList(EnvExtraPlatforms),
		},
		Log: logging.Options{
			Level:  getEnv(EnvLogLevel, DefaultLogLevel),
			Format: getEnv(EnvLogFormat, DefaultLogFormat),
			File:   getEnv(EnvLogFile, ""),
		},
		Minio: storage.MinioConfig{
			Endpoint:        getEnv(EnvMinioEndpoint, ""),
			AccessKeyID:     getEnv(EnvMinioUser, DefaultMinioUser),
			SecretAccessKey: getEnv(EnvMinioPassword, DefaultMinioPassword),
			UseSSL:          getEnvBool(EnvMinioUseSSL, false),
			BucketName:      getEnv(EnvMinioBucket, DefaultMinioBucket),
			Region:          getEnv(EnvMinioRegion, ""),
		},
		AdminJWTSecret:   getEnv(EnvAdminJWTSecret, ""),
		SnapshotSchedule: getEnv(EnvSnapshotSchedule, ""),
	}
}

// Validate проверяет согласованность конфигурации.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("некорректный порт сервера %q (%s)", c.Server.Port, EnvServerPort)
	}
	if (c.Server.CertFile == "") != (c.Server.KeyFile == "") {
		return fmt.Errorf("для HTTPS нужны оба файла: сертификат (%s) и ключ (%s)", EnvTLSCertFile, EnvTLSKeyFile)
	}

	switch c.Database.Driver {
	case repository.DriverPostgres, repository.DriverSQLite:
	default:
		return fmt.Errorf("неизвестный драйвер БД %q (%s): ожидается %s или %s",
			c.Database.Driver, EnvDatabaseDriver, repository.DriverPostgres, repository.DriverSQLite)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("не указана строка подключения к БД (%s)", EnvDatabaseDSN)
	}
	if c.Database.StoreTimeout <= 0 {
		return fmt.Errorf("таймаут хранилища должен быть положительным (%s)", EnvStoreTimeout)
	}

	if c.Minio.Enabled() && c.Minio.BucketName == "" {
		return fmt.Errorf("не указан бакет MinIO (%s)", EnvMinioBucket)
	}
	if c.SnapshotSchedule != "" {
		if !c.Minio.Enabled() {
			return fmt.Errorf("расписание снимков (%s) требует настроенного MinIO (%s)",
				EnvSnapshotSchedule, EnvMinioEndpoint)
		}
		if _, err = cron.ParseStandard(c.SnapshotSchedule); err != nil {
			return fmt.Errorf("некорректное расписание снимков %q: %w", c.SnapshotSchedule, err)
		}
	}
	return nil
}

// Addr возвращает адрес прослушивания host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// TLSEnabled сообщает, запускать ли сервер по HTTPS.
func (c *Config) TLSEnabled() bool {
	return c.Server.CertFile != "" && c.Server.KeyFile != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.EqualFold(value, "true") || value == "1"
	}
	return defaultValue
}

// getEnvDuration возвращает длительность или значение по умолчанию, если переменная не разбирается.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err == nil {
			return duration
		}
		log.Warnf("[Config] Некорректное значение %s=%q, используется %s", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvList разбирает список через запятую, пропуская пустые элементы.
func getEnvList(key string) []string {
	return SplitList(os.Getenv(key))
}

// SplitList разбирает список через запятую, пропуская пустые элементы.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
