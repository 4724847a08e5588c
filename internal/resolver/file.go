package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// fileConfig - структура файла projects.yaml.
//
//	projects:
//	  rona:
//	    github: rona-rs/rona
//	  my-tool:
//	    release_base: https://downloads.example.com/my-tool
//	    tag_prefix: ""
type fileConfig struct {
	Projects map[string]Project `yaml:"projects"`
}

// LoadRegistry читает реестр из YAML-файла. Пустой путь дает DefaultProjects.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		log.Info("[Resolver] Файл проектов не задан, используются проекты по умолчанию")
		return NewRegistry(DefaultProjects())
	}

	routes, err := readFile(path)
	if err != nil {
		return nil, err
	}
	log.Infof("[Resolver] Загружено %d проектов из %s", len(routes), path)
	return &Registry{path: path, routes: routes}, nil
}

// Reload перечитывает файл реестра. При ошибке текущий набор проектов сохраняется.
func (r *Registry) Reload() error {
	if r.path == "" {
		return nil
	}
	routes, err := readFile(r.path)
	if err != nil {
		return err
	}
	r.replace(routes)
	log.Infof("[Resolver] Реестр проектов перечитан (%d проектов)", len(routes))
	return nil
}

// Watch следит за файлом реестра и перечитывает его при изменениях до отмены ctx.
// Следим за каталогом, а не за файлом: редакторы часто заменяют файл целиком.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ошибка создания наблюдателя за файлом проектов: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			log.Warnf("[Resolver] Ошибка закрытия наблюдателя: %v", closeErr)
		}
	}()

	target := filepath.Clean(r.path)
	if err = watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("ошибка подписки на каталог %s: %w", filepath.Dir(target), err)
	}
	log.Infof("[Resolver] Наблюдение за %s запущено", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if reloadErr := r.Reload(); reloadErr != nil {
				log.Errorf("[Resolver] Файл проектов не применен, остается прежний реестр: %v", reloadErr)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("[Resolver] Ошибка наблюдателя: %v", watchErr)
		}
	}
}

func readFile(path string) (map[string]route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла проектов %s: %w", path, err)
	}

	var cfg fileConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(cfg.Projects) == 0 {
		return nil, errors.Join(ErrInvalidConfig, fmt.Errorf("в %s нет ни одного проекта", path))
	}
	return compile(cfg.Projects)
}
