package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/maynagashev/brewtrack/internal/config"
	"github.com/maynagashev/brewtrack/internal/handlers"
	"github.com/maynagashev/brewtrack/internal/services"
)

// snapshotTimeout ограничивает одну публикацию снимка по расписанию.
const snapshotTimeout = time.Minute

// serveFlags - флаги команды serve. Флаг применяется, только если указан явно.
type serveFlags struct {
	host             string
	port             string
	certFile         string
	keyFile          string
	databaseDriver   string
	databaseDSN      string
	storeTimeout     time.Duration
	projectsFile     string
	extraPlatforms   []string
	allowedOrigins   []string
	snapshotSchedule string
}

func newServeCmd(a *app) *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.apply(cmd, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a.cfg)
		},
	}

	f.register(cmd.Flags())
	return cmd
}

// register добавляет флаги serve в набор flags.
func (f *serveFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.host, "host", "",
		fmt.Sprintf("Адрес прослушивания (env: %s, default: %s)", config.EnvServerHost, config.DefaultServerHost))
	flags.StringVar(&f.port, "port", "",
		fmt.Sprintf("Порт HTTP-сервера (env: %s, default: %s)", config.EnvServerPort, config.DefaultServerPort))
	flags.StringVar(&f.certFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s)", config.EnvTLSCertFile))
	flags.StringVar(&f.keyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", config.EnvTLSKeyFile))
	addStoreFlags(flags, &f.databaseDriver, &f.databaseDSN)
	flags.DurationVar(&f.storeTimeout, "store-timeout", 0,
		fmt.Sprintf("Таймаут запроса к хранилищу (env: %s, default: %s)", config.EnvStoreTimeout, config.DefaultStoreTimeout))
	flags.StringVar(&f.projectsFile, "projects-file", "",
		fmt.Sprintf("YAML-файл реестра проектов (env: %s)", config.EnvProjectsFile))
	flags.StringSliceVar(&f.extraPlatforms, "extra-platforms", nil,
		fmt.Sprintf("Дополнительные теги платформ (env: %s)", config.EnvExtraPlatforms))
	flags.StringSliceVar(&f.allowedOrigins, "allowed-origins", nil,
		fmt.Sprintf("Разрешенные CORS-источники (env: %s)", config.EnvAllowedOrigins))
	flags.StringVar(&f.snapshotSchedule, "snapshot-schedule", "",
		fmt.Sprintf("Cron-расписание публикации снимков (env: %s)", config.EnvSnapshotSchedule))
}

// apply переносит явно указанные флаги в конфигурацию поверх окружения.
func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = f.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = f.port
	}
	if flags.Changed("cert-file") {
		cfg.Server.CertFile = f.certFile
	}
	if flags.Changed("key-file") {
		cfg.Server.KeyFile = f.keyFile
	}
	if flags.Changed("database-driver") {
		cfg.Database.Driver = f.databaseDriver
	}
	if flags.Changed("database-dsn") {
		cfg.Database.DSN = f.databaseDSN
	}
	if flags.Changed("store-timeout") {
		cfg.Database.StoreTimeout = f.storeTimeout
	}
	if flags.Changed("projects-file") {
		cfg.Brew.ProjectsFile = f.projectsFile
	}
	if flags.Changed("extra-platforms") {
		cfg.Brew.ExtraPlatforms = f.extraPlatforms
	}
	if flags.Changed("allowed-origins") {
		cfg.Server.AllowedOrigins = f.allowedOrigins
	}
	if flags.Changed("snapshot-schedule") {
		cfg.SnapshotSchedule = f.snapshotSchedule
	}
}

// runServe поднимает зависимости и работает до отмены ctx.
func runServe(ctx context.Context, cfg *config.Config) error {
	log.Info("Запуск сервера brewtrack...")

	deps, err := setupDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	// Отложенное закрытие соединения с БД
	defer deps.close()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("ошибка открытия порта %s: %w", cfg.Addr(), err)
	}
	return serve(ctx, cfg, ln, deps)
}

// serve запускает HTTP-сервер, наблюдение за реестром и расписание снимков.
// Ошибка любой из задач останавливает остальные.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener, deps *dependencies) error {
	opts := deps.routerOptions(cfg)
	if len(opts.AdminSecret) == 0 {
		log.Warnf("[Serve] %s не задан, администраторские маршруты отключены", config.EnvAdminJWTSecret)
	}

	server := &http.Server{
		Handler:      handlers.NewRouter(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	var scheduler *cron.Cron
	if cfg.SnapshotSchedule != "" {
		var err error
		scheduler, err = newSnapshotScheduler(gctx, cfg.SnapshotSchedule, deps.snapshots)
		if err != nil {
			if closeErr := ln.Close(); closeErr != nil {
				log.Warnf("[Serve] Ошибка закрытия слушателя: %v", closeErr)
			}
			return err
		}
	}

	g.Go(func() error {
		var serveErr error
		if cfg.TLSEnabled() {
			log.Infof("Запуск HTTPS-сервера на %s...", ln.Addr())
			log.Infof("Используется сертификат: %s", cfg.Server.CertFile)
			serveErr = server.ServeTLS(ln, cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			log.Infof("Запуск HTTP-сервера на %s...", ln.Addr())
			serveErr = server.Serve(ln)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("ошибка HTTP-сервера: %w", serveErr)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("[Serve] Остановка сервера...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ошибка остановки HTTP-сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return deps.registry.Watch(gctx)
	})

	if scheduler != nil {
		scheduler.Start()
		log.Infof("[Serve] Публикация снимков по расписанию %q", cfg.SnapshotSchedule)
		g.Go(func() error {
			<-gctx.Done()
			<-scheduler.Stop().Done()
			return nil
		})
	}

	err := g.Wait()
	log.Info("Сервер brewtrack остановлен")
	return err
}

// newSnapshotScheduler создает cron-планировщик публикации снимков.
// Запуски не накладываются: если прошлая публикация не закончилась, очередная пропускается.
func newSnapshotScheduler(ctx context.Context, schedule string, snapshots services.SnapshotService) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := scheduler.AddFunc(schedule, func() {
		publishCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
		defer cancel()

		result, err := snapshots.Publish(publishCtx)
		if err != nil {
			log.Errorf("[Snapshots] Ошибка публикации снимка по расписанию: %v", err)
			return
		}
		log.WithFields(log.Fields{"latest": result.Latest, "archive": result.Archive}).
			Info("[Snapshots] Снимок опубликован по расписанию")
	})
	if err != nil {
		return nil, fmt.Errorf("некорректное расписание снимков %q: %w", schedule, err)
	}
	return scheduler, nil
}
