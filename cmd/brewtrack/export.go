package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maynagashev/brewtrack/internal/services"
)

// exportFlags - флаги команды export.
type exportFlags struct {
	databaseDriver string
	databaseDSN    string
	output         string
	publish        bool
	published      bool
}

func newExportCmd(a *app) *cobra.Command {
	f := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Выгрузить статистику скачиваний",
		Long: "Выводит текущую статистику снимком {generated_at, data}, data совпадает с ответом GET /brew/stats.\n" +
			"С --publish дополнительно публикует снимок в MinIO, с --published читает последний опубликованный снимок.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.publish && f.published {
				return errors.New("флаги --publish и --published несовместимы")
			}
			if cmd.Flags().Changed("database-driver") {
				a.cfg.Database.Driver = f.databaseDriver
			}
			if cmd.Flags().Changed("database-dsn") {
				a.cfg.Database.DSN = f.databaseDSN
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			deps, err := setupDependencies(cmd.Context(), a.cfg)
			if err != nil {
				return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
			}
			defer deps.close()

			out, closeOut, err := openOutput(cmd.OutOrStdout(), f.output)
			if err != nil {
				return err
			}
			defer closeOut()

			switch {
			case f.published:
				snapshot, latestErr := deps.snapshots.Latest(cmd.Context())
				if latestErr != nil {
					return latestErr
				}
				return writeJSON(out, snapshot)
			case f.publish:
				result, publishErr := deps.snapshots.Publish(cmd.Context())
				if publishErr != nil {
					return publishErr
				}
				log.WithFields(log.Fields{"latest": result.Latest, "archive": result.Archive}).
					Info("[Export] Снимок опубликован")
				return writeJSON(out, result)
			default:
				stats, statsErr := deps.stats.GetStats(cmd.Context())
				if statsErr != nil {
					return statsErr
				}
				return writeJSON(out, services.Snapshot{GeneratedAt: time.Now().UTC(), Data: stats})
			}
		},
	}

	flags := cmd.Flags()
	addStoreFlags(flags, &f.databaseDriver, &f.databaseDSN)
	flags.StringVarP(&f.output, "output", "o", "", "Файл для записи (по умолчанию stdout)")
	flags.BoolVar(&f.publish, "publish", false, "Опубликовать снимок в MinIO и вывести ключи объектов")
	flags.BoolVar(&f.published, "published", false, "Вывести последний опубликованный снимок из MinIO")
	return cmd
}

// openOutput возвращает stdout или созданный файл.
func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка создания файла %s: %w", path, err)
	}
	return file, func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Errorf("[Export] Ошибка закрытия файла %s: %v", path, closeErr)
		}
	}, nil
}
