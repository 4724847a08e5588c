// Package bottle разбирает имена файлов бутылок Homebrew.
//
// Формат имени: {project}-{version}.{platform}.bottle[.{rebuild}].tar.gz,
// например rona-2.17.7.arm64_sequoia.bottle.tar.gz.
package bottle

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/maynagashev/brewtrack/internal/models"
)

const (
	bottleMarker  = ".bottle"
	archiveSuffix = ".tar.gz"
)

var (
	projectPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+@-]*$`)
	versionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+~-]*$`)
)

// Parser разбирает имена бутылок по словарю известных платформ.
type Parser struct {
	platforms vocabulary
}

// NewParser создает парсер со словарем DefaultPlatforms, дополненным extraPlatforms.
func NewParser(extraPlatforms ...string) *Parser {
	tags := append(DefaultPlatforms(), extraPlatforms...)
	return &Parser{platforms: newVocabulary(tags...)}
}

var defaultParser = NewParser()

// Parse разбирает запрос парсером по умолчанию.
func Parse(projectSlug, filename string) (models.BottleIdentity, error) {
	return defaultParser.Parse(projectSlug, filename)
}

// Parse превращает имя проекта из URL и имя файла в BottleIdentity.
// При любой неоднозначности возвращает *ParseError, частичных результатов не бывает.
func (p *Parser) Parse(projectSlug, filename string) (models.BottleIdentity, error) {
	if err := ValidateProject(projectSlug); err != nil {
		return models.BottleIdentity{}, err
	}

	base, rebuild, ok := splitArchiveSuffix(filename)
	if !ok {
		return models.BottleIdentity{}, newParseError(ErrUnrecognizedFilename, filename)
	}

	prefix := projectSlug + "-"
	if !strings.HasPrefix(base, prefix) {
		return models.BottleIdentity{}, newParseError(ErrUnrecognizedFilename, filename)
	}
	rest := base[len(prefix):]

	// Платформа - последний токен перед суффиксом, все что до него - версия.
	version, platform := "", rest
	if idx := strings.LastIndexByte(rest, '.'); idx >= 0 {
		version, platform = rest[:idx], rest[idx+1:]
	}
	if !p.platforms.contains(platform) {
		return models.BottleIdentity{}, newParseError(ErrUnrecognizedFilename, filename)
	}
	if !validVersion(version) {
		return models.BottleIdentity{}, newParseError(ErrMalformedVersion, filename)
	}

	return models.BottleIdentity{
		Project:  projectSlug,
		Version:  version,
		Platform: platform,
		Rebuild:  rebuild,
	}, nil
}

// Platforms возвращает отсортированный список известных тегов.
func (p *Parser) Platforms() []string {
	tags := make([]string, 0, len(p.platforms))
	for tag := range p.platforms {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ValidateProject проверяет имя проекта из сегмента URL.
func ValidateProject(projectSlug string) error {
	if projectSlug == "" || strings.Contains(projectSlug, "..") || !projectPattern.MatchString(projectSlug) {
		return newParseError(ErrInvalidProject, projectSlug)
	}
	return nil
}

// Filename собирает имя файла бутылки. Обратная операция к Parse.
func Filename(b models.BottleIdentity) string {
	name := fmt.Sprintf("%s-%s.%s%s", b.Project, b.Version, b.Platform, bottleMarker)
	if b.Rebuild > 0 {
		name += "." + strconv.Itoa(b.Rebuild)
	}
	return name + archiveSuffix
}

// splitArchiveSuffix отрезает ".bottle[.N].tar.gz" и возвращает остаток и номер пересборки.
func splitArchiveSuffix(filename string) (string, int, bool) {
	trimmed, ok := strings.CutSuffix(filename, archiveSuffix)
	if !ok {
		return "", 0, false
	}
	if base, found := strings.CutSuffix(trimmed, bottleMarker); found {
		return base, 0, true
	}

	idx := strings.LastIndexByte(trimmed, '.')
	if idx < 0 {
		return "", 0, false
	}
	rebuild, err := strconv.Atoi(trimmed[idx+1:])
	// Пересборка 0 в имени не пишется, ведущие нули не допускаются.
	if err != nil || rebuild <= 0 || strconv.Itoa(rebuild) != trimmed[idx+1:] {
		return "", 0, false
	}
	base, found := strings.CutSuffix(trimmed[:idx], bottleMarker)
	if !found {
		return "", 0, false
	}
	return base, rebuild, true
}

func validVersion(version string) bool {
	if version == "" || strings.Contains(version, "..") {
		return false
	}
	if version == models.TotalDownloadsKey || version == models.TotalInstallsKey {
		return false
	}
	return versionPattern.MatchString(version)
}
