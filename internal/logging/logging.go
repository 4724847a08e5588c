// Package logging настраивает глобальный логгер logrus.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	defaultLevel = log.InfoLevel

	// Параметры ротации файла логов.
	maxFileSizeMB = 20
	maxBackups    = 3
	maxAgeDays    = 14
)

// Options - параметры логирования.
type Options struct {
	Level  string
	Format string
	// File - путь к файлу логов. Пустая строка - только stderr.
	File string
}

// Setup применяет параметры к глобальному логгеру.
// Возвращаемая функция закрывает файл логов, если он был открыт.
func Setup(opts Options) (func() error, error) {
	level := defaultLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("некорректный уровень логирования %q: %w", opts.Level, err)
		}
		level = parsed
	}

	formatter, err := newFormatter(opts.Format)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxFileSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		out = io.MultiWriter(os.Stderr, rotator)
		closeFn = rotator.Close
	}

	log.SetLevel(level)
	log.SetFormatter(formatter)
	log.SetOutput(out)
	return closeFn, nil
}

func newFormatter(format string) (log.Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return &log.TextFormatter{FullTimestamp: true}, nil
	case FormatJSON:
		return &log.JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("неизвестный формат логов %q (ожидается %s или %s)", format, FormatText, FormatJSON)
	}
}
