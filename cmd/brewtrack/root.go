package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maynagashev/brewtrack/internal/config"
	"github.com/maynagashev/brewtrack/internal/logging"
)

const defaultEnvFile = ".env"

// app - общее состояние команд: загруженная конфигурация и закрытие логов.
type app struct {
	envFile   string
	logLevel  string
	logFormat string
	logFile   string

	cfg      *config.Config
	closeLog func() error
}

// newRootCmd собирает дерево команд. Каждый вызов возвращает независимое дерево.
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "brewtrack",
		Short:         "Учет скачиваний Homebrew-бутылок",
		Long:          "brewtrack считает скачивания бутылок, перенаправляет на релизы и отдает агрегированную статистику.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", defaultEnvFile, "Файл с переменными окружения (пустая строка - не читать)")
	flags.StringVar(&a.logLevel, "log-level", "",
		fmt.Sprintf("Уровень логирования (env: %s, default: %s)", config.EnvLogLevel, config.DefaultLogLevel))
	flags.StringVar(&a.logFormat, "log-format", "",
		fmt.Sprintf("Формат логов text|json (env: %s)", config.EnvLogFormat))
	flags.StringVar(&a.logFile, "log-file", "",
		fmt.Sprintf("Файл логов с ротацией (env: %s)", config.EnvLogFile))

	rootCmd.AddCommand(
		newServeCmd(a),
		newParseCmd(a),
		newResolveCmd(a),
		newExportCmd(a),
		newTokenCmd(a),
	)
	return rootCmd
}

// init загружает конфигурацию и настраивает логирование до запуска подкоманды.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = a.logFile
	}

	closeLog, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.closeLog = closeLog
	return nil
}

// addStoreFlags добавляет флаги подключения к хранилищу счетчиков.
func addStoreFlags(flags *pflag.FlagSet, driver, dsn *string) {
	flags.StringVar(driver, "database-driver", "",
		fmt.Sprintf("Драйвер БД postgres|sqlite (env: %s, default: %s)", config.EnvDatabaseDriver, config.DefaultDatabaseDriver))
	flags.StringVar(dsn, "database-dsn", "",
		fmt.Sprintf("Строка подключения к БД (env: %s)", config.EnvDatabaseDSN))
}
