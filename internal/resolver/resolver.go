// Package resolver строит адрес настоящего артефакта бутылки для редиректа.
package resolver

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/maynagashev/brewtrack/internal/bottle"
	"github.com/maynagashev/brewtrack/internal/models"
)

const (
	defaultTagPrefix = "v"
	githubHost       = "https://github.com"
)

// Ошибки резолвера.
var (
	ErrUnknownProject     = errors.New("проект не настроен")
	ErrInvalidReleaseBase = errors.New("некорректный базовый адрес релизов")
	ErrInvalidConfig      = errors.New("некорректный файл проектов")
)

// Project описывает, где опубликованы бутылки проекта.
type Project struct {
	// ReleaseBase - адрес, к которому добавляются тег и имя файла,
	// например https://github.com/rona-rs/rona/releases/download.
	ReleaseBase string `yaml:"release_base"`
	// GitHub - сокращение "org/repo", если ReleaseBase не задан.
	GitHub string `yaml:"github"`
	// TagPrefix - префикс тега релиза перед версией. По умолчанию "v".
	TagPrefix *string `yaml:"tag_prefix"`
}

// DefaultProjects возвращает проекты, известные без файла настроек.
func DefaultProjects() map[string]Project {
	return map[string]Project{
		"rona":           {GitHub: "rona-rs/rona"},
		"clean-dev-dirs": {GitHub: "clean-dev-dirs/clean-dev-dirs"},
	}
}

// route - провалидированная запись проекта.
type route struct {
	base      string
	tagPrefix string
}

// Registry хранит соответствие проектов и адресов релизов.
// Безопасен для конкурентного использования, может перечитываться на лету.
type Registry struct {
	mu     sync.RWMutex
	path   string
	routes map[string]route
}

// NewRegistry создает реестр из готового набора проектов.
func NewRegistry(projects map[string]Project) (*Registry, error) {
	routes, err := compile(projects)
	if err != nil {
		return nil, err
	}
	return &Registry{routes: routes}, nil
}

// Resolve возвращает адрес артефакта для бутылки.
// Имя файла собирается тем же соглашением, что использовал шаг публикации релиза.
func (r *Registry) Resolve(identity models.BottleIdentity) (string, error) {
	r.mu.RLock()
	rt, ok := r.routes[identity.Project]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProject, identity.Project)
	}

	location, err := url.JoinPath(rt.base, rt.tagPrefix+identity.Version, bottle.Filename(identity))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidReleaseBase, err)
	}
	return location, nil
}

// Known сообщает, настроен ли проект.
func (r *Registry) Known(project string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[project]
	return ok
}

// Projects возвращает отсортированный список настроенных проектов.
func (r *Registry) Projects() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) replace(routes map[string]route) {
	r.mu.Lock()
	r.routes = routes
	r.mu.Unlock()
}

func compile(projects map[string]Project) (map[string]route, error) {
	routes := make(map[string]route, len(projects))
	for name, p := range projects {
		if err := bottle.ValidateProject(name); err != nil {
			return nil, fmt.Errorf("%w: проект %q: %w", ErrInvalidConfig, name, err)
		}

		base := strings.TrimSuffix(strings.TrimSpace(p.ReleaseBase), "/")
		if base == "" && p.GitHub != "" {
			base = githubHost + "/" + strings.Trim(p.GitHub, "/") + "/releases/download"
		}
		if err := validateBase(base); err != nil {
			return nil, fmt.Errorf("проект %q: %w", name, err)
		}

		tagPrefix := defaultTagPrefix
		if p.TagPrefix != nil {
			tagPrefix = *p.TagPrefix
		}
		routes[name] = route{base: base, tagPrefix: tagPrefix}
	}
	log.Debugf("[Resolver] Скомпилировано %d проектов", len(routes))
	return routes, nil
}

func validateBase(base string) error {
	if base == "" {
		return fmt.Errorf("%w: адрес не задан", ErrInvalidReleaseBase)
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReleaseBase, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidReleaseBase, base)
	}
	return nil
}
